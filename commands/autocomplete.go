package commands

import (
	"context"
	"sync"

	"Cadence/utils"
	"Cadence/yt"

	"golang.org/x/time/rate"
)

// maxChoices is the number of suggestions shown for a partial search term
const maxChoices = 7

// maxChoiceLength is the longest name or value Discord accepts for a choice
const maxChoiceLength = 100

// guildLimiter throttles autocomplete lookups per guild
type guildLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newGuildLimiter(perSecond float64, burst int) *guildLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &guildLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (g *guildLimiter) allow(guildID string) bool {
	g.mu.Lock()
	limiter, ok := g.limiters[guildID]
	if !ok {
		limiter = rate.NewLimiter(g.limit, g.burst)
		g.limiters[guildID] = limiter
	}
	g.mu.Unlock()
	return limiter.Allow()
}

// searchChoices turns the first results of a search into autocomplete choices
func searchChoices(ctx context.Context, it *yt.SearchIterator) []Choice {
	var choices []Choice
	for _, result := range yt.Take(ctx, it, maxChoices) {
		if result.URL == "" || len(result.URL) > maxChoiceLength {
			continue
		}
		choices = append(choices, Choice{
			Name:  utils.Truncate(result.Title, maxChoiceLength),
			Value: result.URL,
		})
	}
	return choices
}
