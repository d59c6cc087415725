package grpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/wealthflow-projection/internal/domain"
	"github.com/simaogato/wealthflow-projection/internal/usecase/projection"
	"github.com/simaogato/wealthflow-projection/internal/usecase/report"
	"github.com/simaogato/wealthflow-projection/internal/usecase/scenario"
)

// Server implements the ProjectionService gRPC server
type Server struct {
	ScenarioService   *scenario.ScenarioService
	ProjectionService *projection.ProjectionService
	ReportService     *report.ReportService
}

// NewServer creates a new gRPC server instance
func NewServer(
	scenarioService *scenario.ScenarioService,
	projectionService *projection.ProjectionService,
	reportService *report.ReportService,
) *Server {
	return &Server{
		ScenarioService:   scenarioService,
		ProjectionService: projectionService,
		ReportService:     reportService,
	}
}

type scenarioRef struct {
	ScenarioID uuid.UUID `json:"scenarioId"`
}

type updateScenarioRequest struct {
	ScenarioID uuid.UUID `json:"scenarioId"`
	scenario.UpdateScenarioInput
}

type runScenarioRequest struct {
	ScenarioID uuid.UUID `json:"scenarioId"`
	projection.RunInput
}

type distributionRequest struct {
	GroupBy report.GroupBy `json:"groupBy"`
	Filters report.Filters `json:"filters"`
}

type filtersRequest struct {
	Filters report.Filters `json:"filters"`
}

type growthRequest struct {
	Label   report.GrowthLabel `json:"label"`
	Years   int                `json:"years"`
	Filters report.Filters     `json:"filters"`
}

// CreateScenario handles the CreateScenario RPC
func (s *Server) CreateScenario(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var input scenario.CreateScenarioInput
	if err := decodeRequest(req, &input); err != nil {
		return nil, err
	}

	sc, err := s.ScenarioService.Create(ctx, userID, input)
	if err != nil {
		return nil, mapError(err)
	}

	return encodeResponse(newScenarioView(sc, true))
}

// GetScenario handles the GetScenario RPC
func (s *Server) GetScenario(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var ref scenarioRef
	if err := decodeRequest(req, &ref); err != nil {
		return nil, err
	}
	if ref.ScenarioID == uuid.Nil {
		return nil, status.Error(codes.InvalidArgument, "scenarioId is required")
	}

	sc, err := s.ScenarioService.Get(ctx, userID, ref.ScenarioID)
	if err != nil {
		return nil, mapError(err)
	}

	return encodeResponse(newScenarioView(sc, true))
}

// ListScenarios handles the ListScenarios RPC
func (s *Server) ListScenarios(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	scenarios, err := s.ScenarioService.List(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	views := make([]scenarioView, 0, len(scenarios))
	for _, sc := range scenarios {
		views = append(views, newScenarioView(sc, false))
	}

	return encodeResponse(map[string]any{"scenarios": views})
}

// UpdateScenario handles the UpdateScenario RPC
func (s *Server) UpdateScenario(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var in updateScenarioRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if in.ScenarioID == uuid.Nil {
		return nil, status.Error(codes.InvalidArgument, "scenarioId is required")
	}

	sc, err := s.ScenarioService.Update(ctx, userID, in.ScenarioID, in.UpdateScenarioInput)
	if err != nil {
		return nil, mapError(err)
	}

	return encodeResponse(newScenarioView(sc, true))
}

// DeleteScenario handles the DeleteScenario RPC
func (s *Server) DeleteScenario(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var ref scenarioRef
	if err := decodeRequest(req, &ref); err != nil {
		return nil, err
	}
	if ref.ScenarioID == uuid.Nil {
		return nil, status.Error(codes.InvalidArgument, "scenarioId is required")
	}

	if err := s.ScenarioService.Delete(ctx, userID, ref.ScenarioID); err != nil {
		return nil, mapError(err)
	}

	return encodeResponse(map[string]any{"deleted": true})
}

// RunBaselineProjection handles the RunBaselineProjection RPC
func (s *Server) RunBaselineProjection(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var input projection.RunInput
	if err := decodeRequest(req, &input); err != nil {
		return nil, err
	}

	result, err := s.ProjectionService.RunBaseline(ctx, userID, input)
	if err != nil {
		return nil, mapError(err)
	}

	return encodeResponse(result)
}

// RunScenarioProjection handles the RunScenarioProjection RPC
func (s *Server) RunScenarioProjection(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var in runScenarioRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if in.ScenarioID == uuid.Nil {
		return nil, status.Error(codes.InvalidArgument, "scenarioId is required")
	}

	result, err := s.ProjectionService.RunScenario(ctx, userID, in.ScenarioID, in.RunInput)
	if err != nil {
		return nil, mapError(err)
	}

	return encodeResponse(result)
}

// GetLatestProjection handles the GetLatestProjection RPC
func (s *Server) GetLatestProjection(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var ref scenarioRef
	if err := decodeRequest(req, &ref); err != nil {
		return nil, err
	}
	if ref.ScenarioID == uuid.Nil {
		return nil, status.Error(codes.InvalidArgument, "scenarioId is required")
	}

	result, err := s.ProjectionService.GetLatest(ctx, userID, ref.ScenarioID)
	if err != nil {
		return nil, mapError(err)
	}

	return encodeResponse(result)
}

// GetDistribution handles the GetDistribution RPC
func (s *Server) GetDistribution(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	in := distributionRequest{GroupBy: report.GroupByType}
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}

	dist, err := s.ReportService.Distribution(ctx, userID, in.GroupBy, in.Filters)
	if err != nil {
		return nil, mapError(err)
	}

	return encodeResponse(dist)
}

// GetLiquidity handles the GetLiquidity RPC
func (s *Server) GetLiquidity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var in filtersRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}

	liq, err := s.ReportService.Liquidity(ctx, userID, in.Filters)
	if err != nil {
		return nil, mapError(err)
	}

	return encodeResponse(liq)
}

// GetStressTest handles the GetStressTest RPC
func (s *Server) GetStressTest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var in filtersRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}

	results, err := s.ReportService.StressTest(ctx, userID, in.Filters)
	if err != nil {
		return nil, mapError(err)
	}

	return encodeResponse(map[string]any{"results": results})
}

// GetGrowthProjection handles the GetGrowthProjection RPC
func (s *Server) GetGrowthProjection(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	in := growthRequest{Label: report.GrowthModerate, Years: 10}
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}

	growth, err := s.ReportService.GrowthProjection(ctx, userID, in.Label, in.Years, in.Filters)
	if err != nil {
		return nil, mapError(err)
	}

	return encodeResponse(growth)
}

// scenarioView is the wire form of a scenario.
// Actions carry their type tag and encoded parameters, the same shape clients send.
type scenarioView struct {
	ID               uuid.UUID                 `json:"id"`
	Name             string                    `json:"name"`
	Description      string                    `json:"description"`
	Type             domain.ScenarioType       `json:"type"`
	AnnualGrowthRate *float64                  `json:"annualGrowthRate"`
	IsActive         bool                      `json:"isActive"`
	Baseline         *domain.PatrimonySnapshot `json:"baseline,omitempty"`
	Actions          []actionView              `json:"actions,omitempty"`
	CreatedAt        time.Time                 `json:"createdAt"`
	UpdatedAt        time.Time                 `json:"updatedAt"`
}

type actionView struct {
	ID     uuid.UUID         `json:"id"`
	Name   string            `json:"name"`
	Type   domain.ActionType `json:"type"`
	Date   time.Time         `json:"date"`
	Order  int               `json:"order"`
	Params json.RawMessage   `json:"params"`
}

func newScenarioView(sc *domain.Scenario, detailed bool) scenarioView {
	view := scenarioView{
		ID:               sc.ID,
		Name:             sc.Name,
		Description:      sc.Description,
		Type:             sc.Type,
		AnnualGrowthRate: sc.AnnualGrowthRate,
		IsActive:         sc.IsActive,
		CreatedAt:        sc.CreatedAt,
		UpdatedAt:        sc.UpdatedAt,
	}
	if !detailed {
		return view
	}

	baseline := sc.Baseline
	view.Baseline = &baseline
	view.Actions = make([]actionView, 0, len(sc.Actions))
	for _, a := range sc.OrderedActions() {
		actionType, params, err := domain.EncodeActionKind(a.Kind)
		if err != nil {
			// Kinds are validated on the way in, an unencodable one is skipped
			continue
		}
		view.Actions = append(view.Actions, actionView{
			ID:     a.ID,
			Name:   a.Name,
			Type:   actionType,
			Date:   a.Date,
			Order:  a.Order,
			Params: params,
		})
	}
	return view
}

func requireUser(ctx context.Context) (uuid.UUID, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing user id")
	}
	return userID, nil
}

// decodeRequest converts the request struct into dst through its JSON form
func decodeRequest(req *structpb.Struct, dst any) error {
	raw, err := protojson.Marshal(req)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

// encodeResponse converts v into a response struct through its JSON form
func encodeResponse(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}

	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", err.Error())
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidAction):
		return status.Errorf(codes.InvalidArgument, "%s", err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		return status.Errorf(codes.FailedPrecondition, "%s", err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "%s", err.Error())
	}
}
