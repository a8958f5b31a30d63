package validateperiod

const promptTemplate = `Analysez cette question énergétique et déterminez la période OU la granularité EXACTE demandée.

Question: "{{.question}}"

Répondez UNIQUEMENT par l'un de ces codes selon le sens précis :

PÉRIODES TEMPORELLES:
CURRENT_MONTH : "ce mois-ci", "ce mois" → mois calendaire en cours (1er du mois → aujourd'hui)
LAST_MONTH : "mois dernier", "le mois passé" → mois calendaire précédent complet
LAST_30_DAYS : "30 derniers jours", "ces 30 jours" → période glissante de 30 jours
CURRENT_WEEK : "cette semaine" → semaine calendaire en cours
LAST_7_DAYS : "7 derniers jours" → période glissante de 7 jours
LAST_3_DAYS : "3 derniers jours", "trois derniers jours" → période glissante de 3 jours
YESTERDAY : "hier" → jour précédent seulement
DAY_BEFORE_YESTERDAY : "avant-hier", "il y a 2 jours" → le jour avant hier uniquement
CURRENT_YEAR : "cette année" → année calendaire en cours
LAST_YEAR : "année dernière" → année calendaire précédente

GRANULARITÉS:
HOURLY : "par heure", "consommation horaire", "à l'heure"
DAILY : "par jour", "quotidienne", "journalière"
WEEKLY : "par semaine", "hebdomadaire"
MONTHLY : "par mois", "mensuelle"
YEARLY : "par an", "par année", "annuelle", "moyenne par an"

JOURS NOMMÉS:
SATURDAY : "samedi", "samedi dernier" → samedi le plus récent
SUNDAY : "dimanche", "dimanche dernier" → dimanche le plus récent
WEEKEND : "weekend", "fin de semaine" → samedi et dimanche récents

Réponse:`
