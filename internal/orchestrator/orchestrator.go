// Package orchestrator runs several translation services over the same
// extracted subtitle text in parallel and keeps the results that can be
// aligned.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/valpere/subtran/internal/translator"
	"github.com/valpere/subtran/internal/validator"
)

const (
	defaultTimeout     = 5 * time.Minute
	defaultMaxAttempts = 3
	defaultRetryDelay  = 2 * time.Second
)

type OrchestratorConfig struct {
	Timeout        time.Duration
	MaxAttempts    int
	RetryDelay     time.Duration
	SkipValidation bool

	// ServiceConfigs overrides the shared ServiceConfig per service name.
	ServiceConfigs map[string]translator.ServiceConfig
}

type OrchestratorResult struct {
	Results   []translator.ServiceResult
	Errors    []error
	Succeeded int
	Failed    int
}

// Best returns the successful result of the service configured first, or nil.
func (r *OrchestratorResult) Best() *translator.ServiceResult {
	if len(r.Results) == 0 {
		return nil
	}
	return &r.Results[0]
}

type Orchestrator struct {
	services  []translator.TranslationService
	config    OrchestratorConfig
	validator *validator.Validator
}

func New(services []translator.TranslationService, config OrchestratorConfig) *Orchestrator {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaultMaxAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaultRetryDelay
	}

	o := &Orchestrator{
		services: services,
		config:   config,
	}
	if !config.SkipValidation {
		o.validator = validator.New()
	}
	return o
}

// Execute sends req to every service concurrently. Results are ordered like
// the services, so Best prefers the configured order over the fastest.
func (o *Orchestrator) Execute(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) *OrchestratorResult {
	result := &OrchestratorResult{
		Results: make([]translator.ServiceResult, 0),
		Errors:  make([]error, 0),
	}

	type resultChan struct {
		index int
		res   *translator.ServiceResult
		err   error
	}

	resultChanSlice := make(chan resultChan, len(o.services))

	var wg sync.WaitGroup
	for i, svc := range o.services {
		wg.Add(1)
		go func(index int, service translator.TranslationService) {
			defer wg.Done()

			if err := o.checkAvailable(ctx, service); err != nil {
				resultChanSlice <- resultChan{index: index, err: err}
				return
			}

			svcCfg := cfg
			if c, ok := o.config.ServiceConfigs[service.Name()]; ok {
				svcCfg = c
			}

			res, err := o.translateWithRetry(ctx, service, svcCfg, req)
			resultChanSlice <- resultChan{index: index, res: res, err: err}
		}(i, svc)
	}

	go func() {
		wg.Wait()
		close(resultChanSlice)
	}()

	type indexed struct {
		index int
		res   translator.ServiceResult
	}
	var ok []indexed

	for rc := range resultChanSlice {
		if rc.err != nil {
			result.Errors = append(result.Errors, rc.err)
			result.Failed++
			continue
		}
		ok = append(ok, indexed{index: rc.index, res: *rc.res})
		result.Succeeded++
	}

	sort.Slice(ok, func(i, j int) bool { return ok[i].index < ok[j].index })
	for _, r := range ok {
		result.Results = append(result.Results, r.res)
	}

	return result
}

// translateWithRetry calls service up to MaxAttempts times. A result in the
// wrong language is accepted on the last attempt with a warning in its
// metadata; a result with the wrong line count never is, because it cannot
// be aligned.
func (o *Orchestrator) translateWithRetry(ctx context.Context, service translator.TranslationService, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	var lastErr error

	for attempt := 1; attempt <= o.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%s: %w", service.Name(), ctx.Err())
			case <-time.After(o.config.RetryDelay):
			}
		}

		res, err := o.attempt(ctx, service, cfg, req)
		if err == nil {
			slog.Info("translation received", "service", service.Name(), "attempt", attempt, "latency", res.Latency)
			return res, nil
		}
		lastErr = err

		last := attempt == o.config.MaxAttempts
		if last && res != nil && errors.Is(err, validator.ErrWrongLanguage) {
			if res.Metadata == nil {
				res.Metadata = map[string]string{}
			}
			res.Metadata["validation"] = err.Error()
			slog.Warn("accepting translation that failed language check", "service", service.Name(), "error", err)
			return res, nil
		}

		slog.Debug("translation attempt failed", "service", service.Name(), "attempt", attempt, "error", err)
	}

	return nil, fmt.Errorf("%s: %w", service.Name(), lastErr)
}

// checkAvailable fails fast for a service that cannot be called, before any
// attempt is spent on it.
func (o *Orchestrator) checkAvailable(ctx context.Context, service translator.TranslationService) error {
	checkCtx, cancel := o.serviceContext(ctx, service)
	defer cancel()

	if err := service.IsAvailable(checkCtx); err != nil {
		return fmt.Errorf("%s: not available: %w", service.Name(), err)
	}
	return nil
}

// serviceContext bounds a call by the configured timeout unless service waits
// for a person.
func (o *Orchestrator) serviceContext(ctx context.Context, service translator.TranslationService) (context.Context, context.CancelFunc) {
	if i, ok := service.(translator.Interactive); ok && i.Interactive() {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.config.Timeout)
}

func (o *Orchestrator) attempt(ctx context.Context, service translator.TranslationService, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	serviceCtx, cancel := o.serviceContext(ctx, service)
	defer cancel()

	res, err := service.Translate(serviceCtx, cfg, req)
	if err != nil {
		return nil, err
	}
	if res.Error != "" {
		return nil, errors.New(res.Error)
	}

	if err := validator.CheckLines(req.Text, res.TranslatedText); err != nil {
		return nil, err
	}
	if o.validator != nil {
		if _, err := o.validator.IsValid(res.TranslatedText, req.TargetLang); err != nil {
			return res, err
		}
	}
	return res, nil
}
