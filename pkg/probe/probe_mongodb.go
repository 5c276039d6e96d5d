package probe

import (
	"context"
	"net"
	"net/url"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/internal/helper"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type mongoDBProbe struct {
	url *url.URL
}

func NewMongoDBProbe(cfg *config.MongoDB) (*mongoDBProbe, error) {
	if raw := helper.ResolveEnv(cfg.URL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, err
		}
		return &mongoDBProbe{url: u}, nil
	}

	hostname := helper.ResolveEnv(cfg.Hostname)
	port := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Port), "27017", "port", "mongodb")

	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(hostname, port),
		Path:   helper.ResolveEnv(cfg.Database),
	}

	user := helper.ResolveEnv(cfg.User)
	password := helper.ResolveEnv(cfg.Password)
	if user != "" && password != "" {
		u.User = url.UserPassword(user, password)
	}

	return &mongoDBProbe{url: &u}, nil
}

func (m *mongoDBProbe) Exec(ctx context.Context) error {
	client, err := mongo.NewClient(options.Client().ApplyURI(m.url.String()))
	if err != nil {
		return err
	}

	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return err
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "mongodb", "status": "alive", "host": m.url.Host}).Debug()

	return nil
}
