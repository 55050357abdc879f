package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"ecoclick-api/internal/app"
	"ecoclick-api/internal/domain"
	mongostore "ecoclick-api/internal/infra/mongo"
	pgstore "ecoclick-api/internal/infra/postgres"
	pgmigrations "ecoclick-api/internal/infra/postgres/migrations"
	infraredis "ecoclick-api/internal/infra/redis"
	"ecoclick-api/internal/seed"
	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestPostgresRecordStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := pgstore.NewRecordStore(pool)
	exerciseService(t, ctx, store)
}

func TestRedisRecordStoreAndCatalog(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	client, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer client.Close()

	store := infraredis.NewRecordStore(client, "it:")
	exerciseService(t, ctx, store)

	if _, err := seed.Seed(ctx, store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	catalog := infraredis.NewQuizCatalog(client, app.NewQuizLoader(store), "it:", 5*time.Minute, nil)
	service := app.NewService(app.Deps{Store: store, Quizzes: catalog})

	quizzes, err := service.ListQuizzes(ctx, "water")
	if err != nil || len(quizzes) == 0 {
		t.Fatalf("expected seeded water quizzes, got %d err=%v", len(quizzes), err)
	}
	if n, _ := client.Exists(ctx, "it:cache:quizzes").Result(); n != 1 {
		t.Fatalf("quiz list should be cached in redis")
	}
	if _, err := service.CreateQuiz(ctx, domain.Quiz{Title: "Nuevo", Category: "water"}); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	after, err := service.ListQuizzes(ctx, "water")
	if err != nil || len(after) != len(quizzes)+1 {
		t.Fatalf("cache should be invalidated after create, got %d err=%v", len(after), err)
	}
}

func TestMongoRecordStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	mongoURI, mongoCleanup := startMongo(t, ctx)
	defer mongoCleanup()

	store, err := mongostore.Connect(ctx, mongoURI, "ecoclick_it")
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	defer store.Close(ctx)

	exerciseService(t, ctx, store)

	// a second client stands in for another server process sharing the database
	other, err := mongostore.Connect(ctx, mongoURI, "ecoclick_it")
	if err != nil {
		t.Fatalf("connect second mongo client: %v", err)
	}
	defer other.Close(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for _, s := range []app.RecordStore{store, other} {
			wg.Add(1)
			go func(s app.RecordStore) {
				defer wg.Done()
				if _, err := app.NewService(app.Deps{Store: s}).CreateUser(ctx, "shared"); err != nil {
					t.Errorf("create user: %v", err)
				}
			}(s)
		}
	}
	wg.Wait()

	users, err := app.NewService(app.Deps{Store: store}).ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 28 {
		t.Fatalf("expected 28 users across both clients, got %d", len(users))
	}
	seen := map[domain.ID]bool{}
	for _, u := range users {
		if seen[u.ID] {
			t.Fatalf("duplicate user id %d across clients", u.ID)
		}
		seen[u.ID] = true
	}
}

// exerciseService runs the same flow against any backend: concurrent id allocation,
// progress with its mirror, and the stats report.
func exerciseService(t *testing.T, ctx context.Context, store app.RecordStore) {
	t.Helper()
	service := app.NewService(app.Deps{Store: store})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := service.CreateUser(ctx, fmt.Sprintf("player-%d", i)); err != nil {
				t.Errorf("create user: %v", err)
			}
		}(i)
	}
	wg.Wait()

	users, err := service.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 8 {
		t.Fatalf("expected 8 users, got %d", len(users))
	}
	seen := map[domain.ID]bool{}
	for _, u := range users {
		if seen[u.ID] {
			t.Fatalf("duplicate user id %d", u.ID)
		}
		seen[u.ID] = true
	}

	ach, err := service.CreateAchievement(ctx, app.NewAchievement{Name: "Eco", Description: "d", Points: 10})
	if err != nil {
		t.Fatalf("create achievement: %v", err)
	}
	if _, err := service.RecordProgress(ctx, users[0].ID, ach.ID, ""); err != nil {
		t.Fatalf("record progress: %v", err)
	}
	mirrored, err := service.ListUserAchievements(ctx, users[0].ID)
	if err != nil || len(mirrored) != 1 {
		t.Fatalf("expected mirrored user achievement, got %+v err=%v", mirrored, err)
	}

	for _, r := range []struct {
		category string
		score    float64
	}{{"water", 50}, {"water", 100}, {"air", 100}} {
		if _, err := service.RecordCategoryResult(ctx, users[0].ID, r.category, r.score); err != nil {
			t.Fatalf("record result: %v", err)
		}
	}
	report, err := service.ResponseStats(ctx, users[0].ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if report.Summary.AvgScore != 83.3 || report.Summary.TotalProgressPoints != 200 || report.Summary.LevelProgress != 0.4 {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
}

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "eco", "POSTGRES_PASSWORD": "ecopass", "POSTGRES_DB": "ecoclick"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	host, port, terminate := startContainer(t, ctx, req, "5432/tcp")
	dsn := fmt.Sprintf("postgres://eco:ecopass@%s:%s/ecoclick?sslmode=disable", host, port)
	return dsn, terminate
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	host, port, terminate := startContainer(t, ctx, req, "6379/tcp")
	return fmt.Sprintf("redis://%s:%s", host, port), terminate
}

func startMongo(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}
	host, port, terminate := startContainer(t, ctx, req, "27017/tcp")
	return fmt.Sprintf("mongodb://%s:%s", host, port), terminate
}

func startContainer(t *testing.T, ctx context.Context, req tc.ContainerRequest, exposed string) (string, string, func()) {
	t.Helper()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start %s: %v", req.Image, err)
	}
	terminate := func() { _ = container.Terminate(ctx) }
	host, err := container.Host(ctx)
	if err != nil {
		terminate()
		t.Fatalf("%s host: %v", req.Image, err)
	}
	port, err := container.MappedPort(ctx, nat.Port(exposed))
	if err != nil {
		terminate()
		t.Fatalf("%s port: %v", req.Image, err)
	}
	return host, port.Port(), terminate
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
