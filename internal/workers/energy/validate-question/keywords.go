package validatequestion

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"energy-agent/internal/models"
)

var nonEnergyKeywords = []string{
	"temps", "météo", "température extérieure", "pluie", "soleil",
	"sport", "musique", "film", "restaurant", "voyage",
}

var costKeywords = []string{
	"coût", "prix", "euro", "€", "facture", "payer", "payé", "tarif",
	"montant", "argent", "dépense", "budget", "économies",
}

var energyKeywords = []string{
	"consommation", "électricité", "kwh", "énergie", "puissance",
	"moyenne", "jour", "semaine", "mois", "année", "hier", "aujourd'hui",
	"économiser", "cuisine", "buanderie", "chauffage", "zone", "sous-compteur",
	"compteur", "watt", "électrique",
	"lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi", "dimanche",
	"weekend", "fin de semaine",
}

type redirect struct {
	reason     string
	message    string
	suggestion string
}

var redirects = map[models.ScopeType]redirect{
	models.ScopeNonEnergy: {
		reason:     "Question non énergétique",
		message:    "⚡ Bonjour ! Je suis **Energy Agent**, votre assistant spécialisé en **consommation électrique**. Je peux analyser vos données de consommation passées et actuelles.",
		suggestion: "Posez-moi des questions comme : 'Quelle a été ma consommation hier ?' ou 'Quelle est ma consommation moyenne par jour ?'",
	},
	models.ScopeCost: {
		reason:     "Question sur le coût (hors scope)",
		message:    "💰 Je ne traite que les questions de **consommation électrique** (kWh). Je ne peux pas calculer les coûts ou les prix.",
		suggestion: "Essayez plutôt : 'Quelle est ma consommation moyenne par jour ?' ou 'Combien ai-je consommé le mois dernier ?'",
	},
	models.ScopeUnknown: {
		reason:     "Question non reconnue",
		message:    "🤔 Je ne suis pas sûr de comprendre votre question. Je me spécialise dans l'analyse de **consommation électrique**.",
		suggestion: "Essayez une question comme : 'Quelle a été ma consommation hier ?' ou 'Quelle est ma consommation moyenne par jour ?'",
	},
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// containsAnyWord is containsAny restricted to whole words (a plural "s" is
// allowed), so "temps" does not match "printemps" or "longtemps".
func containsAnyWord(s string, keywords []string) bool {
	for _, k := range keywords {
		if containsWord(s, k) {
			return true
		}
	}
	return false
}

func containsWord(s, word string) bool {
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		start, end := from+i, from+i+len(word)
		if strings.HasPrefix(s[end:], "s") {
			end++
		}
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if (start == 0 || !unicode.IsLetter(before)) && (end == len(s) || !unicode.IsLetter(after)) {
			return true
		}
		from = start + 1
	}
	return false
}
