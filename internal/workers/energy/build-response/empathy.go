// internal/workers/energy/build-response/empathy.go
package buildresponse

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Decorator post-processes every phrased answer.
type Decorator interface {
	Decorate(answer, question string) string
}

// Plain leaves answers untouched.
type Plain struct{}

func (Plain) Decorate(answer, _ string) string { return answer }

var openers = []string{
	"🌟 Excellente question ! ",
	"💡 Très bonne question ! ",
	"🎯 Bonne question ! ",
	"✨ Intéressante question ! ",
	"👏 Belle question ! ",
	"💪 Question pertinente ! ",
	"🎉 Question intéressante ! ",
	"⭐ Question utile ! ",
	"🔥 Question importante ! ",
	"💎 Question bien formulée ! ",
}

var closers = []string{
	" C'est une information très utile pour suivre votre consommation !",
	" Cela vous donne une bonne idée de vos habitudes énergétiques !",
	" C'est parfait pour optimiser votre consommation !",
	" Vous avez maintenant une vision claire de votre usage !",
	" C'est très utile pour votre suivi énergétique !",
	" Cela vous aide à mieux comprendre votre consommation !",
	" C'est excellent pour votre gestion énergétique !",
	" Vous avez maintenant toutes les informations nécessaires !",
	" C'est très utile pour votre optimisation énergétique !",
	" Cela vous donne une belle perspective de votre consommation !",
}

// encouragements close answers about averages.
var encouragements = []string{
	" Continuez à surveiller vos habitudes !",
	" C'est un bon indicateur de votre consommation !",
	" Cela vous aide à optimiser votre usage !",
	" C'est parfait pour votre suivi quotidien !",
	" Vous avez une belle maîtrise de votre consommation !",
	" C'est excellent pour votre gestion énergétique !",
	" Cela vous donne une vision claire de vos habitudes !",
	" C'est très utile pour votre optimisation !",
	" Vous avez maintenant un bon repère !",
	" C'est parfait pour votre suivi énergétique !",
}

var averageMarkers = []string{"moyenne", "moyen", "par jour", "par heure", "quotidien"}

// Empathy wraps answers in a random warm opener and closer.
type Empathy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEmpathy draws phrases from rng. A nil rng is seeded from the clock.
func NewEmpathy(rng *rand.Rand) *Empathy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Empathy{rng: rng}
}

func (e *Empathy) Decorate(answer, question string) string {
	pool := closers
	if containsAny(strings.ToLower(question), averageMarkers...) {
		pool = encouragements
	}

	e.mu.Lock()
	opener := openers[e.rng.Intn(len(openers))]
	closer := pool[e.rng.Intn(len(pool))]
	e.mu.Unlock()

	return opener + answer + closer
}

// NewDecorator builds the decorator selected by the configuration.
func NewDecorator(cfg *Config) Decorator {
	if cfg == nil || !cfg.EmpathyEnabled {
		return Plain{}
	}
	if cfg.EmpathySeed != 0 {
		return NewEmpathy(rand.New(rand.NewSource(cfg.EmpathySeed)))
	}
	return NewEmpathy(nil)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
