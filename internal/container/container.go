package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-platform/config"
	repo "github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client

	tokens   *helpers.TokenIssuer
	pictures *helpers.GCSUploader

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client

	credentials repo.CredentialStore
	catalog     repo.CatalogFactory
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }
func SetPGPool(p *pgxpool.Pool)  { pgPool = p }
func GetPGPool() *pgxpool.Pool   { return pgPool }
func SetRedis(r *redis.Client)   { redisClient = r }
func GetRedis() *redis.Client    { return redisClient }
func SetGCS(s *storage.Client)   { gcsClient = s }
func GetGCS() *storage.Client    { return gcsClient }

func SetTokens(t *helpers.TokenIssuer) { tokens = t }
func GetTokens() *helpers.TokenIssuer  { return tokens }

func SetPictureStorage(u *helpers.GCSUploader) { pictures = u }
func GetPictureStorage() *helpers.GCSUploader  { return pictures }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

func SetCredentialStore(s repo.CredentialStore) { credentials = s }
func GetCredentialStore() repo.CredentialStore  { return credentials }
func SetCatalog(f repo.CatalogFactory)          { catalog = f }
func GetCatalog() repo.CatalogFactory           { return catalog }
