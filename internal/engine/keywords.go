package engine

import (
	"strings"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
)

type category string

const (
	catFever       category = "fever"
	catDengue      category = "dengue"
	catMalaria     category = "malaria"
	catRespiratory category = "respiratory"
	catBreathing   category = "breathing"
	catGastro      category = "gastro"
	catGastroAlarm category = "gastro_alarm"
	catHeadache    category = "headache"
	catHeadSevere  category = "headache_severe"
	catDiabetes    category = "diabetes"
	catTyphoid     category = "typhoid"
	catAbdominal   category = "abdominal"
	catJaundice    category = "jaundice"
	catBodyAche    category = "body_ache"
)

type triggerSet map[diagnosis.Language][]string

// triggers maps a symptom category to lower-case trigger fragments per language.
// Symptom text is matched against every language regardless of the requested
// response language, since patients mix scripts freely.
var triggers = map[category]triggerSet{
	catFever: {
		diagnosis.LanguageEnglish: {"fever", "feverish", "high temperature"},
		diagnosis.LanguageHindi:   {"बुखार", "ज्वर"},
		diagnosis.LanguageTamil:   {"காய்ச்சல்"},
		diagnosis.LanguageTelugu:  {"జ్వరం"},
		diagnosis.LanguageBengali: {"জ্বর"},
	},
	catDengue: {
		diagnosis.LanguageEnglish: {"joint pain", "rash", "eye pain", "pain behind the eyes", "bleeding gums"},
		diagnosis.LanguageHindi:   {"जोड़ों में दर्द", "चकत्ते"},
		diagnosis.LanguageTamil:   {"மூட்டு வலி"},
		diagnosis.LanguageTelugu:  {"కీళ్ల నొప్పులు"},
		diagnosis.LanguageBengali: {"গাঁটে ব্যথা"},
	},
	catMalaria: {
		diagnosis.LanguageEnglish: {"chills", "shivering", "sweating", "rigors"},
		diagnosis.LanguageHindi:   {"ठंड लगना", "कंपकंपी", "पसीना"},
		diagnosis.LanguageTamil:   {"குளிர் நடுக்கம்"},
		diagnosis.LanguageTelugu:  {"చలి వణుకు"},
		diagnosis.LanguageBengali: {"কাঁপুনি"},
	},
	catRespiratory: {
		diagnosis.LanguageEnglish: {"cough", "cold", "sore throat", "runny nose", "sneez", "congestion"},
		diagnosis.LanguageHindi:   {"खांसी", "खाँसी", "जुकाम", "सर्दी"},
		diagnosis.LanguageTamil:   {"இருமல்", "சளி"},
		diagnosis.LanguageTelugu:  {"దగ్గు", "జలుబు"},
		diagnosis.LanguageBengali: {"কাশি", "সর্দি"},
	},
	catBreathing: {
		diagnosis.LanguageEnglish: {"difficulty breathing", "breathing difficulty", "shortness of breath", "breathless", "wheez", "chest pain"},
		diagnosis.LanguageHindi:   {"सांस लेने में तकलीफ", "साँस फूलना"},
		diagnosis.LanguageTamil:   {"மூச்சுத் திணறல்"},
		diagnosis.LanguageTelugu:  {"శ్వాస తీసుకోవడంలో ఇబ్బంది"},
		diagnosis.LanguageBengali: {"শ্বাসকষ্ট"},
	},
	catGastro: {
		diagnosis.LanguageEnglish: {"diarrhea", "diarrhoea", "vomiting", "loose motion", "loose stool", "nausea"},
		diagnosis.LanguageHindi:   {"दस्त", "उल्टी"},
		diagnosis.LanguageTamil:   {"வயிற்றுப்போக்கு", "வாந்தி"},
		diagnosis.LanguageTelugu:  {"విరేచనాలు", "వాంతులు"},
		diagnosis.LanguageBengali: {"ডায়রিয়া", "বমি"},
	},
	// Matched against the whole symptom text, not just the GI phrase.
	catGastroAlarm: {
		diagnosis.LanguageEnglish: {"blood", "severe"},
	},
	catHeadache: {
		diagnosis.LanguageEnglish: {"headache", "head pain", "migraine"},
		diagnosis.LanguageHindi:   {"सिरदर्द", "सिर दर्द"},
		diagnosis.LanguageTamil:   {"தலைவலி"},
		diagnosis.LanguageTelugu:  {"తలనొప్పి"},
		diagnosis.LanguageBengali: {"মাথাব্যথা", "মাথা ব্যথা"},
	},
	catHeadSevere: {
		diagnosis.LanguageEnglish: {"severe", "sudden", "worst", "vision", "stiff neck", "confusion"},
		diagnosis.LanguageHindi:   {"तेज", "अचानक"},
	},
	catDiabetes: {
		diagnosis.LanguageEnglish: {"thirst", "frequent urination", "excessive urination", "weight loss"},
		diagnosis.LanguageHindi:   {"प्यास", "बार-बार पेशाब"},
		diagnosis.LanguageTamil:   {"அதிக தாகம்"},
		diagnosis.LanguageTelugu:  {"అధిక దాహం"},
		diagnosis.LanguageBengali: {"অতিরিক্ত তৃষ্ণা"},
	},
	catTyphoid: {
		diagnosis.LanguageEnglish: {"typhoid"},
		diagnosis.LanguageHindi:   {"टाइफाइड"},
	},
	catAbdominal: {
		diagnosis.LanguageEnglish: {"abdominal pain", "stomach pain", "stomach ache"},
		diagnosis.LanguageHindi:   {"पेट दर्द"},
	},
	catJaundice: {
		diagnosis.LanguageEnglish: {"jaundice", "yellow eyes", "yellow skin", "yellowing", "dark urine"},
		diagnosis.LanguageHindi:   {"पीलिया"},
		diagnosis.LanguageTamil:   {"மஞ்சள் காமாலை"},
		diagnosis.LanguageTelugu:  {"కామెర్లు"},
		diagnosis.LanguageBengali: {"জন্ডিস"},
	},
	catBodyAche: {
		diagnosis.LanguageEnglish: {"body ache", "body pain", "muscle pain", "myalgia"},
		diagnosis.LanguageHindi:   {"बदन दर्द", "शरीर दर्द"},
		diagnosis.LanguageTamil:   {"உடல் வலி"},
		diagnosis.LanguageTelugu:  {"ఒళ్ళు నొప్పులు"},
		diagnosis.LanguageBengali: {"গায়ে ব্যথা"},
	},
}

// matches reports whether the lower-cased text contains any trigger of c.
func matches(text string, c category) bool {
	for _, words := range triggers[c] {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
	}
	return false
}

// chronicConditions maps medical-history fragments to the red flag they raise.
// Fragments are specific enough that unrelated words ("heartburn") do not match.
var chronicConditions = []struct {
	fragments []string
	flag      string
}{
	{[]string{"diabetes", "diabetic"}, "History of diabetes: monitor blood glucose during illness"},
	{[]string{"hypertension", "high blood pressure"}, "History of hypertension: monitor blood pressure"},
	{[]string{"heart disease", "heart failure", "heart attack", "cardiac", "coronary", "angina"}, "History of heart disease: seek care early if symptoms worsen"},
	{[]string{"asthma"}, "History of asthma: watch for breathing difficulty"},
	{[]string{"kidney disease", "kidney failure", "renal", "ckd"}, "History of kidney disease: medication doses may need adjustment"},
	{[]string{"pregnan"}, "Pregnancy: confirm medication safety with a physician"},
}
