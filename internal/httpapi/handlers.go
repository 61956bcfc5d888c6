// Package httpapi serves the dashboard API as JSON over HTTP. Every route is
// answered by the same DashboardServer as the gRPC endpoint, so both share
// request validation and the response cache.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/godilite/cs-dashboard/api/v1"
	grpcsrv "github.com/godilite/cs-dashboard/pkg/grpc/server"
	httpsrv "github.com/godilite/cs-dashboard/pkg/http/server"
)

type Handlers struct {
	backend pb.DashboardServer
	logger  *zap.Logger
}

func NewHandlers(backend pb.DashboardServer, logger *zap.Logger) *Handlers {
	if backend == nil {
		panic("nil DashboardServer provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{backend: backend, logger: logger.Named("http-handler")}
}

// Register mounts the API routes on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api/v1")
	{
		api.GET("/options", h.structRoute(h.backend.GetFilterOptions))
		api.GET("/dashboard", h.structRoute(h.backend.GetDashboard))
		api.GET("/tickets", h.structRoute(h.backend.ListTickets))
		api.GET("/charts/:chart", h.Chart)
	}
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type structCall func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func (h *Handlers) structRoute(call structCall) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := requestStruct(c)
		if err != nil {
			h.fail(c, err)
			return
		}
		resp, err := call(callContext(c), req)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.AsMap())
	}
}

func (h *Handlers) Chart(c *gin.Context) {
	req, err := requestStruct(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	req.Fields[pb.KeyChart] = structpb.NewStringValue(c.Param("chart"))

	png, err := h.backend.RenderChart(callContext(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", png.GetValue())
}

// callContext carries the HTTP request id into the backend as incoming gRPC
// metadata.
func callContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if id := httpsrv.RequestID(c); id != "" {
		ctx = grpcsrv.WithRequestID(ctx, id)
	}
	return ctx
}

// requestStruct copies the recognised query parameters into a request Struct.
// Repeated parameters keep their first value.
func requestStruct(c *gin.Context) (*structpb.Struct, error) {
	fields := make(map[string]any, len(pb.RequestKeys))
	for _, key := range pb.RequestKeys {
		if v, ok := c.GetQuery(key); ok {
			fields[key] = v
		}
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad query: %v", err)
	}
	return req, nil
}

func (h *Handlers) fail(c *gin.Context, err error) {
	st := status.Convert(err)
	code := httpStatus(st.Code())
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
	} else {
		h.logger.Debug("request rejected",
			zap.String("path", c.FullPath()),
			zap.String("grpc_code", st.Code().String()),
			zap.String("message", st.Message()))
	}
	c.AbortWithStatusJSON(code, gin.H{
		"error": st.Message(),
		"code":  st.Code().String(),
	})
}

func httpStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Canceled:
		return http.StatusRequestTimeout
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
