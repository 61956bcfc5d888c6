package app

import (
	"context"
	"net"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	pb "github.com/godilite/cs-dashboard/api/v1"
	"github.com/godilite/cs-dashboard/pkg/cache"
	dbbuilder "github.com/godilite/cs-dashboard/pkg/database"
	grpcsrv "github.com/godilite/cs-dashboard/pkg/grpc/server"
)

func TestShutdownMarksServiceNotServing(t *testing.T) {
	db, err := dbbuilder.New(dbbuilder.WithDataSource(":memory:"))
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv, err := grpcsrv.New(grpcsrv.WithListener(lis))
	require.NoError(t, err)
	srv.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterDashboardServer(s, pb.UnimplementedDashboardServer{})
	})
	srv.Start()

	a := &App{logger: zap.NewNop(), dbPool: db, cache: cache.Noop{}, grpcServer: srv}

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	health := healthpb.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := health.Check(ctx, &healthpb.HealthCheckRequest{Service: pb.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	a.drain()

	resp, err = health.Check(ctx, &healthpb.HealthCheckRequest{Service: pb.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	a.Shutdown(ctx)

	assert.Error(t, db.Ping(), "database is closed after shutdown")
}
