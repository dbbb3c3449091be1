package handler

import (
	"log/slog"
	"net/http"

	"github.com/resource-request-api/internal/middleware"
)

// Handlers - набор хендлеров, из которых собирается роутер
type Handlers struct {
	Units         *UnitHandler
	Employees     *EmployeeHandler
	Users         *UserHandler
	Resources     *ResourceHandler
	Workflow      *WorkflowHandler
	Notifications *NotificationHandler
}

// Router настраивает маршруты API
type Router struct {
	mux    *http.ServeMux
	logger *slog.Logger
	h      Handlers
}

// NewRouter создаёт новый роутер
func NewRouter(h Handlers, logger *slog.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
		h:      h,
	}
}

// Setup настраивает все маршруты
func (r *Router) Setup() http.Handler {
	r.handle("units", r.unitsRouter)
	r.handle("employees", r.employeesRouter)
	r.handle("users", r.usersRouter)
	r.handle("resources", r.resourcesRouter)
	r.handle("requests", r.requestsRouter)
	r.handle("validations", r.validationsRouter)
	r.handle("notifications", r.notificationsRouter)

	// Health check
	r.mux.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Применяем middleware
	handler := middleware.ContentType(r.mux)
	handler = middleware.Logger(r.logger)(handler)
	handler = middleware.Recoverer(r.logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}

// handle регистрирует ветку как с завершающим слешем, так и без него
func (r *Router) handle(area string, fn http.HandlerFunc) {
	r.mux.HandleFunc("/"+area, fn)
	r.mux.HandleFunc("/"+area+"/", fn)
}

type methods map[string]http.HandlerFunc

func dispatch(w http.ResponseWriter, req *http.Request, m methods) {
	if fn, ok := m[req.Method]; ok {
		fn(w, req)
		return
	}
	http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
}

func notFound(w http.ResponseWriter) {
	http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
}

// unitsRouter: /units, /units/{id}, /units/{id}/positions
func (r *Router) unitsRouter(w http.ResponseWriter, req *http.Request) {
	parts := pathParts(req)

	switch {
	case len(parts) == 1:
		dispatch(w, req, methods{http.MethodPost: r.h.Units.Create})
	case len(parts) == 2:
		dispatch(w, req, methods{
			http.MethodGet:    r.h.Units.GetByID,
			http.MethodPatch:  r.h.Units.Update,
			http.MethodDelete: r.h.Units.Delete,
		})
	case len(parts) == 3 && parts[2] == "positions":
		dispatch(w, req, methods{
			http.MethodPost: r.h.Units.CreatePosition,
			http.MethodGet:  r.h.Units.ListPositions,
		})
	default:
		notFound(w)
	}
}

// employeesRouter: /employees, /employees/{matricule}, /employees/{matricule}/disable
func (r *Router) employeesRouter(w http.ResponseWriter, req *http.Request) {
	parts := pathParts(req)

	switch {
	case len(parts) == 1:
		dispatch(w, req, methods{http.MethodPost: r.h.Employees.Create})
	case len(parts) == 2:
		dispatch(w, req, methods{
			http.MethodGet:   r.h.Employees.Get,
			http.MethodPatch: r.h.Employees.Update,
		})
	case len(parts) == 3 && parts[2] == "disable":
		dispatch(w, req, methods{http.MethodPost: r.h.Employees.Disable})
	default:
		notFound(w)
	}
}

// usersRouter: /users, /users/{id}, /users/{id}/notifications, /users/{id}/resources
func (r *Router) usersRouter(w http.ResponseWriter, req *http.Request) {
	parts := pathParts(req)

	switch {
	case len(parts) == 1:
		dispatch(w, req, methods{http.MethodPost: r.h.Users.Create})
	case len(parts) == 2:
		dispatch(w, req, methods{http.MethodGet: r.h.Users.GetByID})
	case len(parts) == 3 && parts[2] == "notifications":
		dispatch(w, req, methods{http.MethodGet: r.h.Notifications.ListForUser})
	case len(parts) == 3 && parts[2] == "resources":
		dispatch(w, req, methods{http.MethodGet: r.h.Resources.ListByChief})
	default:
		notFound(w)
	}
}

// resourcesRouter: /resources, /resources/{id}, /resources/{id}/release
func (r *Router) resourcesRouter(w http.ResponseWriter, req *http.Request) {
	parts := pathParts(req)

	switch {
	case len(parts) == 1:
		dispatch(w, req, methods{http.MethodPost: r.h.Resources.Create})
	case len(parts) == 2:
		dispatch(w, req, methods{http.MethodGet: r.h.Resources.GetByID})
	case len(parts) == 3 && parts[2] == "release":
		dispatch(w, req, methods{http.MethodPost: r.h.Resources.Release})
	default:
		notFound(w)
	}
}

// requestsRouter: /requests, /requests/bulk, /requests/{id}
func (r *Router) requestsRouter(w http.ResponseWriter, req *http.Request) {
	parts := pathParts(req)

	switch {
	case len(parts) == 1:
		dispatch(w, req, methods{http.MethodPost: r.h.Workflow.CreateRequest})
	case len(parts) == 2 && parts[1] == "bulk":
		dispatch(w, req, methods{http.MethodPost: r.h.Workflow.CreateRequestsBulk})
	case len(parts) == 2:
		dispatch(w, req, methods{http.MethodGet: r.h.Workflow.GetRequest})
	default:
		notFound(w)
	}
}

// validationsRouter: /validations/{id}/approve, /validations/{id}/reject
func (r *Router) validationsRouter(w http.ResponseWriter, req *http.Request) {
	parts := pathParts(req)
	if len(parts) != 3 {
		notFound(w)
		return
	}

	switch parts[2] {
	case "approve":
		dispatch(w, req, methods{http.MethodPost: r.h.Workflow.Approve})
	case "reject":
		dispatch(w, req, methods{http.MethodPost: r.h.Workflow.Reject})
	default:
		notFound(w)
	}
}

// notificationsRouter: /notifications/read-all, /notifications/{id}, /notifications/{id}/read
func (r *Router) notificationsRouter(w http.ResponseWriter, req *http.Request) {
	parts := pathParts(req)

	switch {
	case len(parts) == 2 && parts[1] == "read-all":
		dispatch(w, req, methods{http.MethodPost: r.h.Notifications.MarkAllRead})
	case len(parts) == 2:
		dispatch(w, req, methods{http.MethodDelete: r.h.Notifications.Delete})
	case len(parts) == 3 && parts[2] == "read":
		dispatch(w, req, methods{http.MethodPost: r.h.Notifications.MarkRead})
	default:
		notFound(w)
	}
}
