// Package store fetches article link graphs from MongoDB.
//
// Articles live in a single collection, each carrying its outgoing links
// with weights:
//
//	{ "name": "Alchemy", "links": [ { "target": "Chymistry", "weight": 2 } ] }
//
// [Store.LinkGraph] walks the link relation breadth-first from a root
// article up to a depth limit and materializes the visited neighborhood as
// a [graph.Graph] ready for layout. Traversal order is deterministic
// (levels are expanded in sorted order), so the resulting node ordering,
// and therefore the layout, is stable across runs.
package store

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/sashob/springbox/pkg/errors"
	"github.com/sashob/springbox/pkg/graph"
)

// collection is the articles collection name.
const collection = "articles"

// Config configures the MongoDB connection.
type Config struct {
	URI      string // e.g. mongodb://localhost:27017
	Database string
}

// Store provides read access to the article collection.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// article is the stored document shape.
type article struct {
	Name  string `bson:"name"`
	Links []link `bson:"links"`
}

type link struct {
	Target string  `bson:"target"`
	Weight float64 `bson:"weight"`
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "store requires uri and database")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStore, err, "connect %s", cfg.URI)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, apperrors.Wrap(apperrors.ErrCodeStore, err, "ping %s", cfg.URI)
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// LinkGraph fetches the link neighborhood of root up to depth hops and
// returns it as a validated graph. depth 0 yields just the root node;
// depth 1 adds its direct neighbors, and so on.
func (s *Store) LinkGraph(ctx context.Context, root string, depth int) (graph.Graph, error) {
	if depth < 0 {
		return graph.Graph{}, apperrors.New(apperrors.ErrCodeInvalidInput, "depth must be non-negative, got %d", depth)
	}

	// Make sure the root exists before walking.
	if _, err := s.fetch(ctx, []string{root}); err != nil {
		return graph.Graph{}, err
	}

	docs := make(map[string]article)
	order := []string{root}
	seen := map[string]struct{}{root: {}}
	frontier := []string{root}

	for level := 0; len(frontier) > 0; level++ {
		batch, err := s.fetch(ctx, frontier)
		if err != nil {
			return graph.Graph{}, err
		}
		for _, a := range batch {
			docs[a.Name] = a
		}

		if level == depth {
			break
		}

		var next []string
		for _, name := range frontier {
			for _, l := range docs[name].Links {
				if _, ok := seen[l.Target]; ok {
					continue
				}
				seen[l.Target] = struct{}{}
				next = append(next, l.Target)
			}
		}
		sort.Strings(next)
		order = append(order, next...)
		frontier = next
	}

	return assemble(docs, order)
}

// fetch loads the named articles. Names without a matching document are
// tolerated for traversal (links may point at articles not yet written),
// except when nothing at all matches a single-name fetch.
func (s *Store) fetch(ctx context.Context, names []string) ([]article, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{"name": bson.M{"$in": names}})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStore, err, "find articles")
	}

	var out []article
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStore, err, "decode articles")
	}
	if len(out) == 0 && len(names) == 1 {
		return nil, apperrors.New(apperrors.ErrCodeArticleNotFound, "article %q not found", names[0])
	}
	return out, nil
}

// assemble builds the graph from the visited articles in traversal order.
// Only edges with both endpoints inside the neighborhood are kept, and each
// unordered pair contributes once: stored links are symmetric, so the
// reverse direction is skipped rather than double-counted.
func assemble(docs map[string]article, order []string) (graph.Graph, error) {
	var g graph.Graph
	inSet := make(map[string]struct{}, len(order))
	for _, name := range order {
		g.Nodes = append(g.Nodes, graph.Node{ID: name})
		inSet[name] = struct{}{}
	}

	emitted := make(map[[2]string]struct{})
	for _, name := range order {
		for _, l := range docs[name].Links {
			if _, ok := inSet[l.Target]; !ok {
				continue
			}
			key := pairKey(name, l.Target)
			if _, dup := emitted[key]; dup {
				continue
			}
			emitted[key] = struct{}{}
			g.Edges = append(g.Edges, graph.Edge{From: name, To: l.Target, Weight: l.Weight})
		}
	}

	if err := g.Validate(); err != nil {
		return graph.Graph{}, fmt.Errorf("assemble link graph: %w", err)
	}
	return g, nil
}

func pairKey(u, v string) [2]string {
	if v < u {
		u, v = v, u
	}
	return [2]string{u, v}
}
