package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface — обработчики всех маршрутов API.
type ServerInterface interface {
	// Информация о сервисе
	// (GET /)
	GetRoot(w http.ResponseWriter, r *http.Request)
	// Состояние сервиса и зависимостей
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// Liveness probe
	// (GET /health/live)
	HealthLive(w http.ResponseWriter, r *http.Request)
	// Readiness probe
	// (GET /health/ready)
	HealthReady(w http.ResponseWriter, r *http.Request)
	// Prometheus метрики
	// (GET /metrics)
	GetMetrics(w http.ResponseWriter, r *http.Request)
	// OpenAPI документ
	// (GET /api/openapi.json)
	GetOpenAPI(w http.ResponseWriter, r *http.Request)
	// Проверка и сохранение подключения
	// (POST /api/connection)
	SaveConnection(w http.ResponseWriter, r *http.Request)
	// Состояние подключения
	// (GET /api/connection/{connectionId})
	GetConnectionStatus(w http.ResponseWriter, r *http.Request, connectionId ConnectionId)
	// Проекты Jira
	// (GET /api/projects/{connectionId})
	ListProjects(w http.ResponseWriter, r *http.Request, connectionId ConnectionId)
	// Поиск задач
	// (GET /api/issues/{connectionId})
	ListIssues(w http.ResponseWriter, r *http.Request, connectionId ConnectionId, params ListIssuesParams)
	// Создание задачи
	// (POST /api/issues/{connectionId})
	CreateIssue(w http.ResponseWriter, r *http.Request, connectionId ConnectionId)
	// История созданных задач
	// (GET /api/issues/{connectionId}/history)
	ListIssueHistory(w http.ResponseWriter, r *http.Request, connectionId ConnectionId, params ListIssueHistoryParams)
	// Типы задач проекта
	// (GET /api/issue-types/{connectionId}/{projectId})
	ListIssueTypes(w http.ResponseWriter, r *http.Request, connectionId ConnectionId, projectId ProjectId)
}

// MiddlewareFunc — middleware отдельного маршрута.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper разбирает параметры запроса и вызывает ServerInterface.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError — параметр не удалось разобрать.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("некорректный формат параметра %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.Handler) {
	for _, middleware := range siw.HandlerMiddlewares {
		h = middleware(h)
	}
	h.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) plain(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siw.serve(w, r, http.HandlerFunc(fn))
	}
}

// pathParam разбирает обязательный path-параметр в стиле simple.
func (siw *ServerInterfaceWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// GetConnectionStatus operation middleware
func (siw *ServerInterfaceWrapper) GetConnectionStatus(w http.ResponseWriter, r *http.Request) {
	var connectionId ConnectionId
	if !siw.pathParam(w, r, "connectionId", &connectionId) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetConnectionStatus(w, r, connectionId)
	}))
}

// ListProjects operation middleware
func (siw *ServerInterfaceWrapper) ListProjects(w http.ResponseWriter, r *http.Request) {
	var connectionId ConnectionId
	if !siw.pathParam(w, r, "connectionId", &connectionId) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListProjects(w, r, connectionId)
	}))
}

// ListIssues operation middleware
func (siw *ServerInterfaceWrapper) ListIssues(w http.ResponseWriter, r *http.Request) {
	var connectionId ConnectionId
	if !siw.pathParam(w, r, "connectionId", &connectionId) {
		return
	}

	var params ListIssuesParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "project_key", query, &params.ProjectKey); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "project_key", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "jql", query, &params.Jql); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "jql", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "max_results", query, &params.MaxResults); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "max_results", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "include_comments", query, &params.IncludeComments); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "include_comments", Err: err})
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListIssues(w, r, connectionId, params)
	}))
}

// CreateIssue operation middleware
func (siw *ServerInterfaceWrapper) CreateIssue(w http.ResponseWriter, r *http.Request) {
	var connectionId ConnectionId
	if !siw.pathParam(w, r, "connectionId", &connectionId) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateIssue(w, r, connectionId)
	}))
}

// ListIssueHistory operation middleware
func (siw *ServerInterfaceWrapper) ListIssueHistory(w http.ResponseWriter, r *http.Request) {
	var connectionId ConnectionId
	if !siw.pathParam(w, r, "connectionId", &connectionId) {
		return
	}

	var params ListIssueHistoryParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListIssueHistory(w, r, connectionId, params)
	}))
}

// ListIssueTypes operation middleware
func (siw *ServerInterfaceWrapper) ListIssueTypes(w http.ResponseWriter, r *http.Request) {
	var connectionId ConnectionId
	if !siw.pathParam(w, r, "connectionId", &connectionId) {
		return
	}
	var projectId ProjectId
	if !siw.pathParam(w, r, "projectId", &projectId) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListIssueTypes(w, r, connectionId, projectId)
	}))
}

// ChiServerOptions — параметры регистрации маршрутов.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions регистрирует маршруты с указанными опциями.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	base := options.BaseURL
	r.Group(func(r chi.Router) {
		r.Get(base+"/", wrapper.plain(si.GetRoot))
		r.Get(base+"/health", wrapper.plain(si.GetHealth))
		r.Get(base+"/health/live", wrapper.plain(si.HealthLive))
		r.Get(base+"/health/ready", wrapper.plain(si.HealthReady))
		r.Get(base+"/metrics", wrapper.plain(si.GetMetrics))
		r.Get(base+"/api/openapi.json", wrapper.plain(si.GetOpenAPI))
		r.Post(base+"/api/connection", wrapper.plain(si.SaveConnection))
		r.Get(base+"/api/connection/{connectionId}", wrapper.GetConnectionStatus)
		r.Get(base+"/api/projects/{connectionId}", wrapper.ListProjects)
		r.Get(base+"/api/issues/{connectionId}", wrapper.ListIssues)
		r.Post(base+"/api/issues/{connectionId}", wrapper.CreateIssue)
		r.Get(base+"/api/issues/{connectionId}/history", wrapper.ListIssueHistory)
		r.Get(base+"/api/issue-types/{connectionId}/{projectId}", wrapper.ListIssueTypes)
	})

	return r
}
