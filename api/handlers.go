package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/mgdrago/anitmated-to-do-list/domain"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, logger *log.Logger) {
	e.GET("/api/health", health())
	e.GET("/api/todos", listTodos(store, logger))
	e.POST("/api/todos", createTodo(store))
	e.GET("/api/todos/:id", getTodo(store))
	e.PATCH("/api/todos/:id", updateTodo(store))
	e.DELETE("/api/todos/:id", deleteTodo(store))
	e.POST("/api/todos/reorder", reorderTodos(store))
	e.POST("/api/todos/purge", purgeTodos(store, logger))
}

func health() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, okResponse{OK: true})
	}
}

// parseID extracts the numeric :id path parameter. An unparseable id maps
// to not-found rather than a server error.
func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
}

func serverError(c echo.Context, err error) error {
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// parseFilter coerces list query parameters into a domain.Filter,
// rejecting out-of-range enum values.
func parseFilter(c echo.Context) (domain.Filter, error) {
	f := domain.Filter{
		Query: c.QueryParam("q"),
		Tag:   c.QueryParam("tag"),
	}
	switch status := c.QueryParam("status"); status {
	case "", domain.StatusAll:
		// The zero Status already means "all"; keeping it zero lets the
		// default list request share the cached unfiltered list.
	case domain.StatusActive, domain.StatusCompleted:
		f.Status = status
	default:
		return domain.Filter{}, domain.ValidationError("invalid status")
	}
	if priority := c.QueryParam("priority"); priority != "" {
		if !domain.ValidPriority(priority) {
			return domain.Filter{}, domain.ValidationError("invalid priority")
		}
		f.Priority = priority
	}
	return f, nil
}

func listTodos(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newListRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		filter, ferr := parseFilter(c)
		if ferr != nil {
			metrics.SetErrorStage("invalid_filter")
			err = c.JSON(http.StatusBadRequest, errorResponse{Error: ferr.Error()})
			return err
		}
		metrics.SetFiltered(!filter.IsZero())

		fetchStart := time.Now()
		tasks, fetchErr := store.List(ctx, filter)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			err = serverError(c, fetchErr)
			return err
		}
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasks)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func createTodo(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		lr := io.LimitReader(c.Request().Body, maxBodySize)
		var in domain.TaskInput
		if err := sonic.ConfigStd.NewDecoder(lr).Decode(&in); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if err := in.Validate(); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}

		task, err := store.Create(c.Request().Context(), in)
		if err != nil {
			var ve domain.ValidationError
			if errors.As(err, &ve) {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Error()})
			}
			return serverError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func getTodo(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return notFound(c)
		}
		task, err := store.Get(c.Request().Context(), id)
		if errors.Is(err, domain.ErrNotFound) {
			return notFound(c)
		}
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func updateTodo(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return notFound(c)
		}
		lr := io.LimitReader(c.Request().Body, maxBodySize)
		var patch domain.TaskPatch
		if err := sonic.ConfigStd.NewDecoder(lr).Decode(&patch); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		task, err := store.Update(c.Request().Context(), id, patch)
		if errors.Is(err, domain.ErrNotFound) {
			return notFound(c)
		}
		if err != nil {
			var ve domain.ValidationError
			if errors.As(err, &ve) {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Error()})
			}
			return serverError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTodo(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return notFound(c)
		}
		if err := store.SoftDelete(c.Request().Context(), id); err != nil {
			return serverError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func reorderTodos(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		lr := io.LimitReader(c.Request().Body, maxBodySize)
		var req reorderRequest
		if err := sonic.ConfigStd.NewDecoder(lr).Decode(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "ids must be an array of numbers"})
		}
		if req.IDs == nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "ids must be an array of numbers"})
		}
		if err := store.Reorder(c.Request().Context(), *req.IDs); err != nil {
			return serverError(c, err)
		}
		return c.JSON(http.StatusOK, okResponse{OK: true})
	}
}

func purgeTodos(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		n, err := store.Purge(c.Request().Context())
		if err != nil {
			return serverError(c, err)
		}
		if n > 0 {
			logger.WithField("purged", n).Debug("purged soft-deleted todos")
		}
		return c.JSON(http.StatusOK, okResponse{OK: true})
	}
}
