package recommend

import "schemefinder/internal/scheme"

var (
	fallbackAdvice = map[scheme.Language]string{
		scheme.LangEnglish: "We could not generate personalised recommendations right now, so these commonly applicable government schemes are shown instead. Please verify eligibility on the official portals.",
		scheme.LangHindi:   "अभी व्यक्तिगत सुझाव तैयार नहीं किए जा सके, इसलिए सामान्य रूप से लागू सरकारी योजनाएँ दिखाई जा रही हैं। कृपया आधिकारिक पोर्टल पर पात्रता की पुष्टि करें।",
	}
	noDetailsAdvice = map[scheme.Language]string{
		scheme.LangEnglish: "We found possible schemes but could not load their details. Please try again in a moment.",
		scheme.LangHindi:   "संभावित योजनाएँ मिलीं, लेकिन उनका विवरण लोड नहीं हो सका। कृपया थोड़ी देर बाद पुनः प्रयास करें।",
	}
	chatApology = map[scheme.Language]string{
		scheme.LangEnglish: "Sorry, I cannot answer that right now.",
		scheme.LangHindi:   "क्षमा करें, मैं अभी उत्तर नहीं दे सकता।",
	}
)

// FallbackAdvice explains why the fallback catalog is shown.
func FallbackAdvice(lang scheme.Language) string { return fallbackAdvice[lang] }

// ChatApology is returned by Chat whenever no answer could be produced.
func ChatApology(lang scheme.Language) string { return chatApology[lang] }
