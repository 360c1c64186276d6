// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bazaar/internal/pkg/nacos"
	"bazaar/internal/pkg/tracing"
	"bazaar/internal/pkg/utils"
)

type AppCtx struct {
	Mux   *http.ServeMux
	Nacos *nacos.Client
}

// AppInfo 包含了启动一个微服务所需的所有特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) // 允许每个服务注册自己独特的 HTTP 路由
	// BackgroundTasks 是与 HTTP 服务一起运行的长生命周期任务
	// （Kafka 消费者、清理任务等），收到退出信号时通过 ctx 取消。
	BackgroundTasks []func(ctx context.Context) error
}

// StartService 封装了所有微服务的通用启动和优雅关停逻辑。
func StartService(info AppInfo) {
	// 1. 初始化 Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, GetCurrentConfig().Infra.Jaeger.Endpoint)
	if err != nil {
		log.Fatalf("failed to initialize tracer provider: %v", err)
	}

	// 2. 服务注册（未配置 Nacos 时跳过，便于本地开发）
	var namingClient *nacos.Client
	var serviceIP string
	if nacosAddrs := os.Getenv("NACOS_SERVER_ADDRS"); nacosAddrs != "" {
		namingClient, err = nacos.NewNacosClient(nacosAddrs, os.Getenv("NACOS_NAMESPACE"), os.Getenv("NACOS_GROUP"))
		if err != nil {
			log.Fatalf("failed to initialize nacos client: %v", err)
		}

		serviceIP, err = utils.GetOutboundIP()
		if err != nil {
			log.Fatalf("failed to get outbound IP address: %v", err)
		}
		if err := namingClient.RegisterServiceInstance(info.ServiceName, serviceIP, info.Port); err != nil {
			log.Fatalf("failed to register service with nacos: %v", err)
		}
	} else {
		log.Printf("WARN: NACOS_SERVER_ADDRS not set, skipping service registration")
	}

	// 3. 创建并启动 HTTP Server
	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Nacos: namingClient})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	go func() {
		log.Printf("%s listening on :%d", info.ServiceName, info.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not listen on %s: %v\n", server.Addr, err)
		}
	}()

	// 4. 启动后台任务，统一由 errgroup 管理生命周期
	taskCtx, cancelTasks := context.WithCancel(context.Background())
	g, gCtx := errgroup.WithContext(taskCtx)
	for _, task := range info.BackgroundTasks {
		task := task
		g.Go(func() error { return task(gCtx) })
	}

	// 5. 优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 阻塞主 goroutine，直到接收到退出信号
	<-quit
	log.Printf("Shutting down service %s...", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 按顺序执行清理操作 (后进先出)
	cancelTasks()
	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Printf("Background task exited with error: %v", err)
	}

	if namingClient != nil {
		if err := namingClient.DeregisterServiceInstance(info.ServiceName, serviceIP, info.Port); err != nil {
			log.Printf("Error deregistering from Nacos: %v", err)
		} else {
			log.Printf("Service %s deregistered from Nacos.", info.ServiceName)
		}
	}

	if nacosConfigClient != nil {
		nacosConfigClient.Close()
	}

	// 关闭 Tracer Provider，确保所有缓冲的 trace 都被发送出去
	if err := tp.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down tracer provider: %v", err)
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down http server: %v", err)
	}

	log.Printf("Service %s gracefully shut down.", info.ServiceName)
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
