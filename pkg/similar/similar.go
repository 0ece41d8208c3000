// Package similar finds vehicles with comparable performance envelopes.
// Each baseline is projected onto a fixed attribute vector and stored in
// Qdrant; similarity is cosine distance in that attribute space.
package similar

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/GearheadHQ/gearhead-mvp/engine/domain"
)

// VectorDims is the dimensionality of the attribute vector.
const VectorDims = 6

// Match is a similarity search hit.
type Match struct {
	Name       string  `json:"name"`
	Score      float32 `json:"score"`
	Drivetrain string  `json:"drivetrain"`
}

// Store is the sole owner of all Qdrant operations.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New creates a Store connected to Qdrant at the given gRPC address.
func New(addr, collection string) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("similar: dial qdrant %s: %w", addr, err)
	}
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist.
func (s *Store) EnsureCollection(ctx context.Context) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("similar: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     VectorDims,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("similar: create collection %s: %w", s.collection, err)
	}
	return nil
}

// Index stores (or replaces) a baseline's attribute vector. Point IDs are
// derived from the vehicle name, so re-seeding the same vehicle overwrites
// its point instead of duplicating it.
func (s *Store) Index(ctx context.Context, baselines ...domain.VehicleBaseline) error {
	if len(baselines) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(baselines))
	for i, b := range baselines {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(b.Name)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: AttributeVector(b)},
				},
			},
			Payload: map[string]*pb.Value{
				"name":       {Kind: &pb.Value_StringValue{StringValue: b.Name}},
				"drivetrain": {Kind: &pb.Value_StringValue{StringValue: string(b.Drivetrain)}},
			},
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("similar: upsert %d points: %w", len(baselines), err)
	}
	return nil
}

// SimilarTo returns up to topK vehicles whose performance envelope is
// closest to the given baseline. The baseline itself is excluded by name.
func (s *Store) SimilarTo(ctx context.Context, b domain.VehicleBaseline, topK int) ([]Match, error) {
	req := &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         AttributeVector(b),
		Limit:          uint64(topK + 1),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}

	resp, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("similar: search: %w", err)
	}

	matches := make([]Match, 0, topK)
	for _, r := range resp.GetResult() {
		payload := r.GetPayload()
		name := payload["name"].GetStringValue()
		if name == b.Name {
			continue
		}
		matches = append(matches, Match{
			Name:       name,
			Score:      r.GetScore(),
			Drivetrain: payload["drivetrain"].GetStringValue(),
		})
		if len(matches) == topK {
			break
		}
	}
	return matches, nil
}

// Drop deletes the whole collection.
func (s *Store) Drop(ctx context.Context) error {
	_, err := s.collections.Delete(ctx, &pb.DeleteCollection{
		CollectionName: s.collection,
	})
	if err != nil {
		return fmt.Errorf("similar: delete collection %s: %w", s.collection, err)
	}
	return nil
}

// PointID derives a stable UUID for a vehicle name.
func PointID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// AttributeVector projects a baseline onto the similarity space. Each
// component is scaled so typical road cars land near [0, 1]; higher is
// always faster so cosine distance groups cars of similar capability.
func AttributeVector(b domain.VehicleBaseline) []float32 {
	powerToWeight := 0.0
	torqueToWeight := 0.0
	if b.CurbWeight > 0 {
		powerToWeight = b.HP / b.CurbWeight * 10 // ~1.0 for 300hp/3000lb
		torqueToWeight = b.Torque / b.CurbWeight * 10
	}
	accel := 0.0
	if b.ZeroToSixty > 0 {
		accel = 4.0 / b.ZeroToSixty // ~1.0 for a 4s car
	}
	braking := 0.0
	if b.Braking60To0 > 0 {
		braking = 100.0 / b.Braking60To0 // ~1.0 for a 100ft stop
	}
	revs := float64(b.RedlineRPM) / 9000.0

	return []float32{
		float32(powerToWeight),
		float32(torqueToWeight),
		float32(accel),
		float32(braking),
		float32(b.LateralG),
		float32(revs),
	}
}
