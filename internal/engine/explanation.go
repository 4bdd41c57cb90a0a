package engine

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
)

var explanationTemplates = map[diagnosis.Language]string{
	diagnosis.LanguageEnglish: "Based on your symptoms, the most likely condition is %s. Please follow the recommended actions and consult a doctor if your symptoms worsen.",
	diagnosis.LanguageHindi:   "आपके लक्षणों के आधार पर, संभावित स्थिति %s है। कृपया सुझाए गए उपायों का पालन करें और लक्षण बिगड़ने पर डॉक्टर से परामर्श करें।",
	diagnosis.LanguageTamil:   "உங்கள் அறிகுறிகளின் அடிப்படையில், சாத்தியமான நிலை %s. பரிந்துரைக்கப்பட்ட நடவடிக்கைகளைப் பின்பற்றவும், அறிகுறிகள் மோசமடைந்தால் மருத்துவரை அணுகவும்.",
	diagnosis.LanguageTelugu:  "మీ లక్షణాల ఆధారంగా, సంభావ్య పరిస్థితి %s. దయచేసి సూచించిన చర్యలను పాటించండి మరియు లక్షణాలు తీవ్రమైతే వైద్యుడిని సంప్రదించండి.",
	diagnosis.LanguageBengali: "আপনার উপসর্গের ভিত্তিতে, সম্ভাব্য অবস্থা হল %s। অনুগ্রহ করে প্রস্তাবিত পদক্ষেপগুলি অনুসরণ করুন এবং উপসর্গ খারাপ হলে ডাক্তারের পরামর্শ নিন।",
}

// Explain renders the patient-facing sentence. Unknown languages get English.
func Explain(lang diagnosis.Language, primaryDiagnosis string) string {
	tmpl, ok := explanationTemplates[lang]
	if !ok {
		tmpl = explanationTemplates[diagnosis.LanguageEnglish]
	}
	return fmt.Sprintf(tmpl, primaryDiagnosis)
}
