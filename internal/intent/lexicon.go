// Package intent decides which handler answers a user message.
package intent

import (
	"regexp"
	"strings"
	"sync"
)

// Keyword groups. Entries containing a space become phrases, everything else
// is a single-token keyword.
var (
	greetings = []string{
		"hi", "hello", "hola", "hey", "howdy", "greetings", "good morning", "good afternoon", "good evening", "good day",
	}

	generalMobileTerms = []string{
		"android", "ios", "iphone", "smartphone", "mobile phone", "cellphone",
		"phone", "device", "cell phone", "handset", "gadget", "tablet", "phablet",
	}

	osAndPlatformTerms = []string{
		"operating system", "os", "play store", "app store", "iOS update",
		"android update", "firmware", "software update", "ota", "rooting",
		"jailbreaking", "beta version",
	}

	applicationTerms = []string{
		"app", "application", "game", "mobile app", "download", "install",
		"update app", "app permissions", "in-app purchase", "push notifications",
		"background app refresh", "data usage", "app crash", "app settings",
	}

	featuresAndSettings = []string{
		"bluetooth", "wifi", "nfc", "hotspot", "airplane mode", "gps",
		"location services", "camera", "selfie", "portrait mode", "night mode",
		"lens", "zoom", "video recording", "slow-motion", "4k",
	}

	hardwareAndAccessories = []string{
		"charger", "charging", "fast charging", "wireless charging", "usb-c",
		"lightning cable", "headphones", "earbuds", "airpods", "display",
		"screen", "battery", "power", "screen protector", "case", "cover",
		"stylus", "headphone jack",
	}

	communicationTerms = []string{
		"call", "messaging", "sms", "text", "voicemail", "contacts",
		"address book", "video call", "facetime", "imessage", "google duo",
		"signal", "whatsapp", "telegram", "phone number", "sim card", "dual sim",
		"carrier", "network", "4g", "5g", "lte", "mobile data", "roaming",
	}

	securityAndPrivacy = []string{
		"fingerprint", "face id", "face unlock", "passcode", "pin",
		"lock screen", "unlock", "encryption", "two-factor authentication",
		"vpn", "security settings", "privacy", "data backup", "icloud",
		"google drive", "find my iphone", "find my device", "device tracking",
	}

	troubleshooting = []string{
		"battery drain", "overheating", "slow phone", "lagging", "app not working",
		"touchscreen issue", "reboot", "restart", "reset phone", "factory reset",
		"phone not charging", "connectivity issue",
	}

	popularApps = []string{
		"facebook", "instagram", "twitter", "snapchat", "tiktok", "youtube",
		"spotify", "gmail", "outlook", "zoom", "microsoft teams", "netflix",
		"slack", "telegram", "signal", "uber", "google maps",
	}

	accessibility = []string{
		"voiceover", "talkback", "screen reader", "closed captions",
		"text-to-speech", "magnification", "hearing aid compatibility",
		"vibration", "gesture control", "accessibility settings",
	}

	paymentsAndBanking = []string{
		"mobile payments", "apple pay", "google pay", "samsung pay",
		"contactless payments", "wallet", "banking app", "mobile banking",
		"money transfer", "peer-to-peer payment",
	}
)

// DefaultGroups returns the curated smartphone vocabulary.
func DefaultGroups() [][]string {
	return [][]string{
		greetings, generalMobileTerms, osAndPlatformTerms, applicationTerms,
		featuresAndSettings, hardwareAndAccessories, communicationTerms,
		securityAndPrivacy, troubleshooting, popularApps, accessibility,
		paymentsAndBanking,
	}
}

var nonWordChars = regexp.MustCompile(`[^a-z0-9\s]`)

// Lexicon answers whether free text mentions the assistant's domain.
// It is immutable after construction and safe for concurrent use.
type Lexicon struct {
	words   map[string]struct{}
	phrases []string
}

// NewLexicon splits the given keyword groups into single-token keywords and
// multi-token phrases. Entries are kept verbatim.
func NewLexicon(groups ...[]string) *Lexicon {
	l := &Lexicon{words: make(map[string]struct{})}
	for _, group := range groups {
		for _, kw := range group {
			if strings.Contains(kw, " ") {
				l.phrases = append(l.phrases, kw)
				continue
			}
			l.words[kw] = struct{}{}
		}
	}
	return l
}

var defaultLexicon = sync.OnceValue(func() *Lexicon {
	return NewLexicon(DefaultGroups()...)
})

// DefaultLexicon returns the shared lexicon built from DefaultGroups.
func DefaultLexicon() *Lexicon {
	return defaultLexicon()
}

// ContainsDomainKeyword reports whether any token of the normalized text is a
// keyword, or the normalized text contains a phrase. Phrase matching is a
// plain substring test without word boundaries.
func (l *Lexicon) ContainsDomainKeyword(text string) bool {
	processed := Normalize(text)

	for _, token := range strings.Fields(processed) {
		if _, ok := l.words[token]; ok {
			return true
		}
	}

	for _, phrase := range l.phrases {
		if strings.Contains(processed, phrase) {
			return true
		}
	}

	return false
}

// Size returns the number of keywords and phrases.
func (l *Lexicon) Size() (words, phrases int) {
	return len(l.words), len(l.phrases)
}

// Normalize lowercases text, strips everything outside [a-z0-9\s] and trims.
func Normalize(text string) string {
	return strings.TrimSpace(nonWordChars.ReplaceAllString(strings.ToLower(text), ""))
}
