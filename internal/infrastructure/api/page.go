package api

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JoeLimewire/weather-app/internal/domain/entities"
	"github.com/JoeLimewire/weather-app/internal/domain/ports"
	"github.com/JoeLimewire/weather-app/internal/pkg/logger"
)

const (
	FetchErrorBanner = "An error occurred whilst fetching the weather data."

	viewCookie  = "forecast_view"
	viewIdleTTL = 30 * time.Minute
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"temperature": func(v float64, u entities.UnitSystem) string {
			if u == entities.UnitsKelvin {
				return fmt.Sprintf("%.1f K", v)
			}
			return fmt.Sprintf("%.1f °%s", v, u.Symbol())
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

type PageHandler struct {
	views    *viewStore
	defaults QueryDefaults
	logger   logger.Logger
}

func NewPageHandler(service ports.ForecastService, defaults QueryDefaults, log logger.Logger) *PageHandler {
	return &PageHandler{
		views:    newViewStore(service, viewIdleTTL),
		defaults: defaults,
		logger:   log.WithField("component", "page_handler"),
	}
}

type formValues struct {
	City  string
	Units entities.UnitSystem
	Days  int
}

type pageData struct {
	Form        formValues
	State       ViewState
	Banner      string
	UnitOptions []entities.UnitSystem
	DayOptions  []int
}

// Index renders the form. With a city in the query string it fetches first;
// with dismiss=1 it clears the current error instead.
func (h *PageHandler) Index(c *gin.Context) {
	id, view := h.views.get(cookieValue(c))
	c.SetCookie(viewCookie, id, int(viewIdleTTL.Seconds()), "/", "", false, true)

	form := formValues{Units: h.defaults.Units, Days: h.defaults.Days}

	if c.Query("dismiss") == "1" {
		view.DismissError()
	} else if city, ok := c.GetQuery("city"); ok {
		form.City = city
		query, err := parseQuery(city, c.Query("units"), c.Query("days"), h.defaults)
		if err != nil {
			view.Fail(err)
		} else {
			form.Units, form.Days = query.Units, query.Days
			if err := view.Load(c.Request.Context(), query); errors.Is(err, ErrFetchInFlight) {
				h.logger.Debugf("Fetch for view %s already in progress", id)
			}
		}
	}

	c.HTML(http.StatusOK, "index.html", pageData{
		Form:        form,
		State:       view.State(),
		Banner:      FetchErrorBanner,
		UnitOptions: entities.AllUnitSystems(),
		DayOptions:  dayOptions(),
	})
}

func cookieValue(c *gin.Context) string {
	value, err := c.Cookie(viewCookie)
	if err != nil {
		return ""
	}
	return value
}

func dayOptions() []int {
	days := make([]int, 0, entities.MaxForecastDays)
	for d := entities.MinForecastDays; d <= entities.MaxForecastDays; d++ {
		days = append(days, d)
	}
	return days
}

type storedView struct {
	view     *ForecastView
	lastSeen time.Time
}

// viewStore keeps one ForecastView per browser, keyed by a cookie.
type viewStore struct {
	service ports.ForecastService
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	views map[string]*storedView
}

func newViewStore(service ports.ForecastService, ttl time.Duration) *viewStore {
	return &viewStore{
		service: service,
		ttl:     ttl,
		now:     time.Now,
		views:   make(map[string]*storedView),
	}
}

// get returns the view for id, creating a view under a fresh id when id is
// unknown or expired.
func (s *viewStore) get(id string) (string, *ForecastView) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if stored, ok := s.views[id]; ok && now.Sub(stored.lastSeen) < s.ttl {
		stored.lastSeen = now
		return id, stored.view
	}

	s.prune(now)

	id = uuid.New().String()
	view := NewForecastView(s.service)
	s.views[id] = &storedView{view: view, lastSeen: now}
	return id, view
}

func (s *viewStore) prune(now time.Time) {
	for id, stored := range s.views {
		if now.Sub(stored.lastSeen) >= s.ttl {
			delete(s.views, id)
		}
	}
}

func (s *viewStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}
