package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux     *http.ServeMux
	handler http.Handler
	logger  *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	mux := http.NewServeMux()
	return &Router{
		mux:     mux,
		handler: accessLog(mux, logger),
		logger:  logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// RegisterHealthRoutes GET /healthz
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", only(http.MethodGet, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
	}))
}

// RegisterAuthRoutes 注册、登录、登出、当前用户
func (r *Router) RegisterAuthRoutes(h *AuthHandler, a *Authenticator) {
	r.Handle(apiPrefix+"/auth/signup", only(http.MethodPost, h.SignUp))
	r.Handle(apiPrefix+"/auth/signin", only(http.MethodPost, h.SignIn))
	r.Handle(apiPrefix+"/auth/signout", only(http.MethodPost, h.SignOut))
	r.Handle(apiPrefix+"/auth/me", only(http.MethodGet, a.Require(h.Me)))
}

// RegisterReadingRoutes 记录、统计、趋势、导出
func (r *Router) RegisterReadingRoutes(h *ReadingsHandler, a *Authenticator) {
	list := a.Require(h.List)
	create := a.Require(h.Create)
	r.Handle(apiPrefix+"/readings", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			list(w, req)
		case http.MethodPost:
			create(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	r.Handle(apiPrefix+"/readings/measure", only(http.MethodPost, a.Require(h.Measure)))
	r.Handle(apiPrefix+"/readings/recent", only(http.MethodGet, a.Require(h.Recent)))
	r.Handle(apiPrefix+"/readings/export", only(http.MethodGet, a.Require(h.Export)))

	r.Handle(apiPrefix+"/stats", only(http.MethodGet, a.Require(h.Stats)))
	r.Handle(apiPrefix+"/stats/trend", only(http.MethodGet, a.Require(h.Trend)))
	r.Handle(apiPrefix+"/stats/trend/chart", only(http.MethodGet, a.Require(h.TrendChart)))
}

// RegisterProfileRoutes 资料、头像、引导页
func (r *Router) RegisterProfileRoutes(h *ProfileHandler, a *Authenticator) {
	get := a.Require(h.Get)
	update := a.Require(h.Update)
	r.Handle(apiPrefix+"/profile", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			get(w, req)
		case http.MethodPut:
			update(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	r.Handle(apiPrefix+"/profile/avatar", only(http.MethodPost, a.Require(h.UploadAvatar)))

	getOnboarding := a.Require(h.GetOnboarding)
	setOnboarding := a.Require(h.SetOnboarding)
	clearOnboarding := a.Require(h.ClearOnboarding)
	r.Handle(apiPrefix+"/onboarding", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			getOnboarding(w, req)
		case http.MethodPut:
			setOnboarding(w, req)
		case http.MethodDelete:
			clearOnboarding(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
