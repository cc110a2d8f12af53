// path: database/database.go
package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/config"
)

// Collection names.
const (
	RequestsCollection   = "requests"
	HistoryCollection    = "request_history"
	VolunteersCollection = "volunteers"
)

var client *mongo.Client
var db *mongo.Database

// Connect establishes a singleton MongoDB connection.
func Connect(ctx context.Context, cfg config.Mongo, log *zap.Logger) error {
	if client != nil && db != nil {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	target, reason := resolveConfig(cfg, log)
	if cfg.Debug {
		log.Debug("mongo: config snapshot", zap.String("snapshot", snapshot(cfg)))
	}

	start := time.Now()
	log.Info("mongo: connecting",
		zap.String("mode", target.Mode),
		zap.String("uri", redactURI(target.URI)),
		zap.String("db", target.DBName),
		zap.String("reason", reason))

	dctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	c, err := mongo.Connect(dctx, options.Client().ApplyURI(target.URI))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err = c.Ping(dctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return fmt.Errorf("mongo ping: %w", err)
	}

	client = c
	db = c.Database(target.DBName)

	if err := createIndexes(ctx); err != nil {
		log.Warn("mongo: index creation warnings", zap.Error(err))
	}

	log.Info("mongo: connected", zap.Duration("took", time.Since(start).Round(time.Millisecond)))
	return nil
}

func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	defer func() { client, db = nil, nil }()
	return client.Disconnect(ctx)
}

func Client() *mongo.Client { return client }

func Col(name string) *mongo.Collection {
	if db == nil {
		panic("database not connected: call database.Connect first")
	}
	return db.Collection(name)
}

// Ping checks the live connection; used by /healthz.
func Ping(ctx context.Context) error {
	if client == nil {
		return errors.New("database not connected")
	}
	return client.Ping(ctx, nil)
}

// --- internal ---

type target struct {
	Mode   string
	URI    string
	DBName string
}

// resolveConfig returns the chosen target and a human-readable reason.
func resolveConfig(cfg config.Mongo, log *zap.Logger) (target, string) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	dbname := cfg.DBName
	if dbname == "" {
		dbname = "reliefhub"
	}
	explicit := strings.TrimSpace(cfg.URI)
	local := strings.TrimSpace(cfg.URILocal)
	if local == "" {
		local = "mongodb://localhost:27017"
	}
	remote := strings.TrimSpace(cfg.URIRemote)

	switch mode {
	case "local":
		return target{Mode: "local", URI: chooseFirstNonEmpty(explicit, local), DBName: dbname},
			reasonLocal(explicit)
	case "remote":
		if remote != "" {
			return target{Mode: "remote", URI: remote, DBName: dbname}, "MONGO_MODE=remote, using MONGO_URI_REMOTE"
		}
		log.Warn("mongo: MONGO_MODE=remote but MONGO_URI_REMOTE empty; falling back to local")
		return target{Mode: "local", URI: chooseFirstNonEmpty(explicit, local), DBName: dbname},
			"remote missing, fallback to explicit/local"
	default: // auto: remote > explicit > local
		if remote != "" {
			return target{Mode: "remote", URI: remote, DBName: dbname}, "auto: MONGO_URI_REMOTE present"
		}
		if explicit != "" {
			return target{Mode: "auto", URI: explicit, DBName: dbname}, "auto: MONGO_URI present"
		}
		return target{Mode: "local", URI: local, DBName: dbname}, "auto: fallback to local"
	}
}

type indexSpec struct {
	col   string
	name  string
	model mongo.IndexModel
}

// indexSpecs lists the indexes ensured at startup. (phone, address) is
// unique so concurrent duplicate submissions cannot both land.
func indexSpecs() []indexSpec {
	idx := func(col, name string, keys bson.D) indexSpec {
		return indexSpec{col: col, name: name, model: mongo.IndexModel{Keys: keys}}
	}
	phoneAddr := idx(RequestsCollection, "phone,address",
		bson.D{{Key: "req_phone_number", Value: 1}, {Key: "req_address", Value: 1}})
	phoneAddr.model.Options = options.Index().SetUnique(true)

	return []indexSpec{
		idx(RequestsCollection, "created_at", bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
		idx(RequestsCollection, "status", bson.D{{Key: "status", Value: 1}}),
		idx(RequestsCollection, "assigned_user", bson.D{{Key: "assigned_user", Value: 1}, {Key: "status", Value: 1}}),
		phoneAddr,
		idx(HistoryCollection, "volunteer_id", bson.D{{Key: "volunteer_id", Value: 1}, {Key: "timestamp", Value: -1}}),
		idx(HistoryCollection, "request_id", bson.D{{Key: "request_id", Value: 1}}),
		idx(VolunteersCollection, "is_verified", bson.D{{Key: "is_verified", Value: 1}}),
	}
}

func createIndexes(ctx context.Context) error {
	if db == nil {
		return errors.New("db is nil")
	}
	ctxIdx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []string
	for _, s := range indexSpecs() {
		if _, err := Col(s.col).Indexes().CreateOne(ctxIdx, s.model); err != nil {
			errs = append(errs, s.col+"."+s.name+": "+err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// --- utils ---

func redactURI(raw string) string {
	if raw == "" || !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.UserPassword("****", "****")
	return u.String()
}

func chooseFirstNonEmpty(v1, v2 string) string {
	if strings.TrimSpace(v1) != "" {
		return v1
	}
	return v2
}

func reasonLocal(explicit string) string {
	if explicit != "" {
		return "MONGO_MODE=local with explicit MONGO_URI"
	}
	return "MONGO_MODE=local using MONGO_URI_LOCAL/default"
}

// snapshot shows the precedence inputs with credentials masked.
func snapshot(cfg config.Mongo) string {
	fields := []string{
		"MONGO_MODE=" + cfg.Mode,
		"MONGO_DB=" + cfg.DBName,
		"MONGO_URI=" + redactURI(cfg.URI),
		"MONGO_URI_LOCAL=" + redactURI(cfg.URILocal),
		"MONGO_URI_REMOTE=" + redactURI(cfg.URIRemote),
	}
	return strings.Join(fields, " ")
}
