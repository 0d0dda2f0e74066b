package clients

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthProbe asks a gRPC health endpoint whether a service is serving.
type HealthProbe struct {
	Health healthpb.HealthClient
	conn   *grpc.ClientConn
}

func NewHealthProbe(addr string) (*HealthProbe, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("health probe connection failed: %w", err)
	}

	return &HealthProbe{
		Health: healthpb.NewHealthClient(conn),
		conn:   conn,
	}, nil
}

func (p *HealthProbe) IsServing(ctx context.Context, service string) (bool, error) {
	resp, err := p.Health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

func (p *HealthProbe) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
