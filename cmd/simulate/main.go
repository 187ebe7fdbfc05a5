// simulate 用四个托管玩家在一个房间里连续打若干局，打印牌局记录和结算
package main

import (
	"context"
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/palemoky/wudi/internal/config"
	"github.com/palemoky/wudi/internal/game/room"
	"github.com/palemoky/wudi/internal/logger"
	"github.com/palemoky/wudi/internal/server/session"
	"github.com/palemoky/wudi/internal/server/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	matches := flag.Int("matches", 3, "连续模拟的局数")
	seed := flag.Uint64("seed", 0, "洗牌种子，0 表示随机")
	flag.Parse()

	// .env 不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("环境变量配置无效: %v", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Close()
	lg := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim, cleanup, err := newSimulator(ctx, cfg, *seed, lg)
	if err != nil {
		lg.Fatal("创建模拟器失败", zap.Error(err))
	}
	defer cleanup()

	sum, err := sim.run(ctx, *matches)
	if err != nil {
		lg.Error("模拟失败", zap.Error(err))
		return
	}
	lg.Info("模拟完成", zap.Int("matches", sum.Matches), zap.Int64("change_events", sum.Events))
}

// newSimulator 按配置选择存储后端并装配房间和会话管理器
func newSimulator(ctx context.Context, cfg *config.Config, seed uint64, lg *zap.Logger) (*simulator, func(), error) {
	var (
		backend storage.Backend
		board   storage.Leaderboard
		client  *redis.Client
	)

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		backend = storage.NewRedisBackend(client, cfg.Redis.ChannelPrefix, lg)
		if cfg.Leaderboard.Enabled {
			board = storage.NewLeaderboardManager(client, cfg.Redis.ChannelPrefix)
		}
	default:
		backend = storage.NewMemoryBackend()
	}

	store := storage.NewStore(backend, lg)
	cleanup := func() {
		if err := store.Close(); err != nil {
			lg.Warn("关闭存储失败", zap.Error(err))
		}
		if client != nil {
			_ = client.Close()
		}
	}

	opts := []session.Option{
		session.WithLogger(lg),
		session.WithAutoPlayLimit(cfg.Game.AutoPlayLimit),
	}
	if board != nil {
		opts = append(opts, session.WithLeaderboard(board))
	}
	if seed != 0 {
		opts = append(opts, session.WithRand(rand.New(rand.NewPCG(seed, seed))))
	}
	sessions := session.NewManager(store, opts...)

	return &simulator{
		store:    store,
		sessions: sessions,
		rooms:    room.NewRoomManager(store, sessions, cfg.Game, lg),
		board:    board,
		log:      lg,
		out:      os.Stdout,
	}, cleanup, nil
}
