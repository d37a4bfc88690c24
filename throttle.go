package tranzlate

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/ti-oluwa/tranzlate/engine"
)

// throttledEngine waits on a shared limiter before every translation.
type throttledEngine struct {
	engine.Engine
	limiter *rate.Limiter
}

func (e *throttledEngine) Translate(ctx context.Context, req engine.Request) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", &TranslationError{Message: "rate limit wait cancelled", Cause: err}
	}
	return e.Engine.Translate(ctx, req)
}

func (e *throttledEngine) Languages(ctx context.Context) (engine.LanguageMap, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, &TranslationError{Message: "rate limit wait cancelled", Cause: err}
	}
	return e.Engine.Languages(ctx)
}
