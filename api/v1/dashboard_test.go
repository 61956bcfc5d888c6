package v1

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type echoServer struct {
	UnimplementedDashboardServer
}

func (echoServer) GetDashboard(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return EncodeStruct(map[string]any{"echo": in.AsMap()})
}

func dial(t *testing.T, srv DashboardServer) DashboardClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterDashboardServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewDashboardClient(conn)
}

func TestDashboardService(t *testing.T) {
	client := dial(t, echoServer{})
	ctx := context.Background()

	in, err := structpb.NewStruct(map[string]any{"고객유형": "A", "limit": 10})
	require.NoError(t, err)

	t.Run("implemented method", func(t *testing.T) {
		out, err := client.GetDashboard(ctx, in)
		require.NoError(t, err)

		echo := out.AsMap()["echo"].(map[string]any)
		assert.Equal(t, "A", echo["고객유형"])
		assert.Equal(t, 10.0, echo["limit"])
	})

	t.Run("unimplemented methods", func(t *testing.T) {
		_, err := client.GetFilterOptions(ctx, in)
		assert.Equal(t, codes.Unimplemented, status.Code(err))
		_, err = client.ListTickets(ctx, in)
		assert.Equal(t, codes.Unimplemented, status.Code(err))
		_, err = client.RenderChart(ctx, in)
		assert.Equal(t, codes.Unimplemented, status.Code(err))
	})
}

func TestStructCoding(t *testing.T) {
	type row struct {
		Name  string   `json:"name"`
		Count int      `json:"count"`
		Mean  *float64 `json:"mean"`
		Tags  []string `json:"tags"`
	}

	in := row{Name: "환불", Count: 3, Tags: []string{"a", "b"}}
	s, err := EncodeStruct(in)
	require.NoError(t, err)
	assert.Equal(t, "환불", s.Fields["name"].GetStringValue())
	assert.Equal(t, structpb.NullValue_NULL_VALUE, s.Fields["mean"].GetNullValue())

	var out row
	require.NoError(t, DecodeStruct(s, &out))
	assert.Equal(t, in, out)

	_, err = EncodeStruct([]int{1, 2})
	assert.Error(t, err, "only JSON objects map to a Struct")
}
