// Package bench exposes the bench service over HTTP with gin.
package bench

import (
	"errors"
	"expvar"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"labworks/internal/core"
	"labworks/internal/entitymodel"
	"labworks/pkg/domain"
)

var errMalformedBody = errors.New("malformed request body")

// Options configures the router. A nil Gatherer serves the default
// prometheus registry; a nil Logger discards access logs.
type Options struct {
	Gatherer prometheus.Gatherer
	Logger   core.Logger
}

// Handler binds bench operations to HTTP routes.
type Handler struct {
	svc *core.Service
}

// NewRouter builds the gin engine serving svc.
func NewRouter(svc *core.Service, opts Options) *gin.Engine {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger{}
	}
	h := &Handler{svc: svc}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(opts.Logger))

	r.GET("/healthz", func(c *gin.Context) { success(c, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	r.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	r.GET("/openapi.yaml", gin.WrapH(entitymodel.NewOpenAPIHandler()))
	r.GET("/bench", h.snapshot)

	library := r.Group("/library")
	{
		library.GET("", h.library)
		library.GET("/next-id", h.nextBookID)
		library.GET("/books/:id/index", h.bookIndex)
		library.POST("/books", h.addBook)
	}

	r.POST("/keyboards", h.createKeyboard)
	r.POST("/keyboards/:id/backlight", h.switchBacklight)

	r.POST("/samples", h.createSample)
	r.POST("/samples/:id/water", h.addWater)
	r.POST("/samples/:id/material", h.addMaterial)

	r.POST("/coffees", h.createCoffee)
	r.POST("/coffees/:id/sugar", h.addSugar)
	r.POST("/coffees/:id/milk", h.addMilk)

	r.POST("/plants", h.createPlant)
	r.POST("/plants/:id/fertilizer", h.addFertilizer)
	r.POST("/araucarias", h.createAraucaria)
	r.POST("/araucarias/:id/watering", h.waterAraucaria)
	r.POST("/fittonias", h.createFittonia)
	r.POST("/fittonias/:id/pruning", h.pruneFittonia)

	r.DELETE("/:kind/:id", h.deleteRecord)
	return r
}

func payload(c *gin.Context) (domain.Payload, error) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	p, err := domain.ParsePayload(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return p, nil
}

// create decodes the body with decode and stores it with store.
func create[T, R any](c *gin.Context, decode func(domain.Payload) (T, error), store func(T) (R, domain.Result, error)) {
	p, err := payload(c)
	if err != nil {
		failWith(c, err)
		return
	}
	v, err := decode(p)
	if err != nil {
		failWith(c, err)
		return
	}
	rec, res, err := store(v)
	if err != nil {
		failWith(c, err)
		return
	}
	created(c, withResult(rec, res))
}

// amount reads a single number field and hands it to apply.
func amount[R any](c *gin.Context, entity domain.EntityType, key string, apply func(id string, v float64) (R, domain.Result, error)) {
	p, err := payload(c)
	if err != nil {
		failWith(c, err)
		return
	}
	v, err := p.Number(entity, key)
	if err != nil {
		failWith(c, err)
		return
	}
	rec, res, err := apply(c.Param("id"), v)
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, withResult(rec, res))
}

func (h *Handler) snapshot(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, snap)
}

func (h *Handler) library(c *gin.Context) {
	lib, err := h.svc.Library(c.Request.Context())
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, lib)
}

func (h *Handler) nextBookID(c *gin.Context) {
	next, err := h.svc.NextBookID(c.Request.Context())
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, gin.H{"next_id": next})
}

func (h *Handler) bookIndex(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		failWith(c, domain.TypeConstraintError{Entity: domain.EntityBook, Field: "id", Value: c.Param("id"), Reason: "expected integer"})
		return
	}
	idx, err := h.svc.BookIndex(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, gin.H{"id": id, "index": idx})
}

// addBook appends the book as given when the body names an id and lets the
// library assign one otherwise.
func (h *Handler) addBook(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := payload(c)
	if err != nil {
		failWith(c, err)
		return
	}
	if _, ok := p["id"]; ok {
		book, err := domain.DecodeBook(p)
		if err != nil {
			failWith(c, err)
			return
		}
		res, err := h.svc.AppendBook(ctx, book)
		if err != nil {
			failWith(c, err)
			return
		}
		created(c, withResult(book, res))
		return
	}
	name, err := p.Text(domain.EntityBook, "name")
	if err != nil {
		failWith(c, err)
		return
	}
	pages, err := p.Int(domain.EntityBook, "pages")
	if err != nil {
		failWith(c, err)
		return
	}
	book, res, err := h.svc.AddBook(ctx, name, pages)
	if err != nil {
		failWith(c, err)
		return
	}
	created(c, withResult(book, res))
}

func (h *Handler) createKeyboard(c *gin.Context) {
	create(c, domain.DecodeKeyboard, func(k domain.Keyboard) (core.Record[domain.Keyboard], domain.Result, error) {
		return h.svc.CreateKeyboard(c.Request.Context(), k)
	})
}

func (h *Handler) switchBacklight(c *gin.Context) {
	p, err := payload(c)
	if err != nil {
		failWith(c, err)
		return
	}
	on, err := p.Bool(domain.EntityKeyboard, "on")
	if err != nil {
		failWith(c, err)
		return
	}
	rec, res, err := h.svc.SwitchBacklight(c.Request.Context(), c.Param("id"), on)
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, withResult(rec, res))
}

func (h *Handler) createSample(c *gin.Context) {
	create(c, domain.DecodeSample, func(s domain.Sample) (core.Record[domain.Sample], domain.Result, error) {
		return h.svc.CreateSample(c.Request.Context(), s)
	})
}

func (h *Handler) addWater(c *gin.Context) {
	amount(c, domain.EntitySample, "ml", func(id string, ml float64) (core.Record[domain.Sample], domain.Result, error) {
		return h.svc.AddWaterToSample(c.Request.Context(), id, ml)
	})
}

func (h *Handler) addMaterial(c *gin.Context) {
	amount(c, domain.EntitySample, "ml", func(id string, ml float64) (core.Record[domain.Sample], domain.Result, error) {
		return h.svc.AddMaterialToSample(c.Request.Context(), id, ml)
	})
}

func (h *Handler) createCoffee(c *gin.Context) {
	create(c, domain.DecodeCoffee, func(cf domain.Coffee) (core.Record[domain.Coffee], domain.Result, error) {
		return h.svc.CreateCoffee(c.Request.Context(), cf)
	})
}

func (h *Handler) addSugar(c *gin.Context) {
	amount(c, domain.EntityCoffee, "grams", func(id string, g float64) (core.Record[domain.Coffee], domain.Result, error) {
		return h.svc.AddSugar(c.Request.Context(), id, g)
	})
}

func (h *Handler) addMilk(c *gin.Context) {
	amount(c, domain.EntityCoffee, "ml", func(id string, ml float64) (core.Record[domain.Coffee], domain.Result, error) {
		return h.svc.AddMilk(c.Request.Context(), id, ml)
	})
}

func (h *Handler) createPlant(c *gin.Context) {
	create(c, domain.DecodePlant, func(p domain.Plant) (core.Record[domain.Plant], domain.Result, error) {
		return h.svc.CreatePlant(c.Request.Context(), p)
	})
}

func (h *Handler) createAraucaria(c *gin.Context) {
	create(c, domain.DecodeAraucaria, func(a domain.Araucaria) (core.Record[domain.Araucaria], domain.Result, error) {
		return h.svc.CreateAraucaria(c.Request.Context(), a)
	})
}

func (h *Handler) createFittonia(c *gin.Context) {
	create(c, domain.DecodeFittonia, func(f domain.Fittonia) (core.Record[domain.Fittonia], domain.Result, error) {
		return h.svc.CreateFittonia(c.Request.Context(), f)
	})
}

func (h *Handler) addFertilizer(c *gin.Context) {
	amount(c, domain.EntityPlant, "liters", func(id string, l float64) (core.Record[domain.Plant], domain.Result, error) {
		return h.svc.AddFertilizer(c.Request.Context(), id, l)
	})
}

func (h *Handler) waterAraucaria(c *gin.Context) {
	p, err := payload(c)
	if err != nil {
		failWith(c, err)
		return
	}
	liters, err := p.Number(domain.EntityAraucaria, "liters")
	if err != nil {
		failWith(c, err)
		return
	}
	need, err := p.Bool(domain.EntityAraucaria, "need_watering")
	if err != nil {
		failWith(c, err)
		return
	}
	rec, res, err := h.svc.WaterAraucaria(c.Request.Context(), c.Param("id"), liters, need)
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, withResult(rec, res))
}

func (h *Handler) pruneFittonia(c *gin.Context) {
	p, err := payload(c)
	if err != nil {
		failWith(c, err)
		return
	}
	need, err := p.Bool(domain.EntityFittonia, "need_pruning")
	if err != nil {
		failWith(c, err)
		return
	}
	rec, res, err := h.svc.PruneFittonia(c.Request.Context(), c.Param("id"), need)
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, withResult(rec, res))
}

var deletable = map[string]domain.EntityType{
	"keyboards":  domain.EntityKeyboard,
	"samples":    domain.EntitySample,
	"coffees":    domain.EntityCoffee,
	"plants":     domain.EntityPlant,
	"araucarias": domain.EntityAraucaria,
	"fittonias":  domain.EntityFittonia,
}

func (h *Handler) deleteRecord(c *gin.Context) {
	kind, ok := deletable[c.Param("kind")]
	if !ok {
		fail(c, http.StatusNotFound, "unknown record kind "+c.Param("kind"))
		return
	}
	res, err := h.svc.Delete(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		failWith(c, err)
		return
	}
	if len(res.Violations) > 0 {
		success(c, gin.H{"violations": violations(res)})
		return
	}
	c.Status(http.StatusNoContent)
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
