package api

import (
	"context"
	"errors"
	"sync"

	"github.com/JoeLimewire/weather-app/internal/domain/entities"
	"github.com/JoeLimewire/weather-app/internal/domain/ports"
)

var ErrFetchInFlight = errors.New("forecast fetch already in progress")

// ForecastView holds the interaction state around a single forecast fetch:
// the loading flag, the message of the last failure and the last result.
type ForecastView struct {
	service ports.ForecastService

	mu           sync.Mutex
	loading      bool
	errorMessage string
	result       *entities.ForecastResult
}

type ViewState struct {
	Loading      bool
	ErrorMessage string
	Result       *entities.ForecastResult
}

func NewForecastView(service ports.ForecastService) *ForecastView {
	return &ForecastView{service: service}
}

// Load refuses to start while another Load is outstanding. A failed load
// keeps the previous result on screen.
func (v *ForecastView) Load(ctx context.Context, query entities.ForecastQuery) error {
	v.mu.Lock()
	if v.loading {
		v.mu.Unlock()
		return ErrFetchInFlight
	}
	v.loading = true
	v.errorMessage = ""
	v.mu.Unlock()

	result, err := v.service.GetForecast(ctx, query)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		v.errorMessage = entities.UserMessage(err)
		return err
	}
	v.result = result
	return nil
}

// Fail records err without fetching, for input rejected before a query exists.
func (v *ForecastView) Fail(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errorMessage = entities.UserMessage(err)
}

func (v *ForecastView) DismissError() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errorMessage = ""
}

func (v *ForecastView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ViewState{
		Loading:      v.loading,
		ErrorMessage: v.errorMessage,
		Result:       v.result,
	}
}
