// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"log"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"bazaar/internal/pkg/nacos"
)

// Config 是所有服务共享的配置结构。
// 优先级: 默认值 < 本地 YAML 文件 < Nacos 配置中心（支持热更新）。
type Config struct {
	App struct {
		// HoldTimeout 是库存预占的有效期，超时未提交的 Hold 会被释放
		HoldTimeout time.Duration `yaml:"holdTimeout"`
		// SweepInterval 是过期 Hold 清理任务的执行间隔
		SweepInterval time.Duration `yaml:"sweepInterval"`
		// ReturnWindow 是 DELIVERED 之后允许发起退货的时间窗口
		ReturnWindow time.Duration `yaml:"returnWindow"`
		// Policies 是用 CEL 表达式描述的可配置业务策略
		Policies struct {
			// RestockOnReturn 决定退货时是否将库存调整回仓
			RestockOnReturn string `yaml:"restockOnReturn"`
			// CancelOnDeliveryFailure 决定配送失败时订单是取消还是回到 PROCESSING
			CancelOnDeliveryFailure string `yaml:"cancelOnDeliveryFailure"`
		} `yaml:"policies"`
	} `yaml:"app"`

	Infra struct {
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
		} `yaml:"kafka"`
		Redis struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"redis"`
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Zookeeper struct {
			Addrs []string `yaml:"addrs"`
		} `yaml:"zookeeper"`
		Services struct {
			LogisticsURL string `yaml:"logisticsUrl"`
			PaymentURL   string `yaml:"paymentUrl"`
			CatalogURL   string `yaml:"catalogUrl"`
		} `yaml:"services"`
	} `yaml:"infra"`
}

var (
	currentConfig     atomic.Value // 存储 *Config
	nacosConfigClient *nacos.ConfigClient
)

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.HoldTimeout = 30 * time.Minute
	cfg.App.SweepInterval = 1 * time.Minute
	cfg.App.ReturnWindow = 14 * 24 * time.Hour
	cfg.App.Policies.RestockOnReturn = "false"
	cfg.App.Policies.CancelOnDeliveryFailure = "false"
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	cfg.Infra.Kafka.Brokers = []string{getEnv("KAFKA_BROKERS", "localhost:9092")}
	cfg.Infra.Redis.Addrs = getEnv("REDIS_ADDRS", "localhost:6379")
	cfg.Infra.Mysql.DSN = getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/bazaar?charset=utf8mb4&parseTime=True&loc=Local")
	cfg.Infra.Zookeeper.Addrs = []string{getEnv("ZOOKEEPER_ADDRS", "localhost:2181")}
	cfg.Infra.Services.LogisticsURL = getEnv("LOGISTICS_SERVICE_URL", "http://localhost:8083")
	cfg.Infra.Services.PaymentURL = getEnv("PAYMENT_SERVICE_URL", "http://localhost:8090")
	cfg.Infra.Services.CatalogURL = getEnv("CATALOG_SERVICE_URL", "http://localhost:8082")
	return cfg
}

// Init 加载配置。必须在 StartService 之前调用。
func Init() {
	cfg := defaultConfig()

	// 1. 本地 YAML 文件覆盖默认值
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("FATAL: cannot read config file %s: %v", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("FATAL: cannot parse config file %s: %v", path, err)
		}
	}

	currentConfig.Store(cfg)

	// 2. Nacos 配置中心覆盖本地配置，并监听热更新
	nacosAddrs := os.Getenv("NACOS_SERVER_ADDRS")
	dataId := getEnv("NACOS_CONFIG_DATA_ID", "bazaar-config.yaml")
	if nacosAddrs == "" {
		return
	}

	client, err := nacos.NewConfigClient(nacosAddrs, os.Getenv("NACOS_NAMESPACE"), os.Getenv("NACOS_GROUP"))
	if err != nil {
		log.Printf("WARN: nacos config center unavailable, using local config: %v", err)
		return
	}
	nacosConfigClient = client

	applyRemote := func(content string) {
		if content == "" {
			return
		}
		// 基于当前配置的拷贝做增量覆盖，未出现的字段保持不变
		merged := *GetCurrentConfig()
		if err := yaml.Unmarshal([]byte(content), &merged); err != nil {
			log.Printf("ERROR: ignoring malformed remote config: %v", err)
			return
		}
		currentConfig.Store(&merged)
		log.Printf("Config refreshed from Nacos (dataId=%s)", dataId)
	}

	if content, err := client.GetConfig(dataId); err == nil {
		applyRemote(content)
	} else {
		log.Printf("WARN: failed to fetch remote config: %v", err)
	}
	if err := client.ListenConfig(dataId, applyRemote); err != nil {
		log.Printf("WARN: failed to listen for config changes: %v", err)
	}
}

// GetCurrentConfig 返回当前生效的配置快照。
func GetCurrentConfig() *Config {
	if cfg, ok := currentConfig.Load().(*Config); ok {
		return cfg
	}
	cfg := defaultConfig()
	currentConfig.Store(cfg)
	return cfg
}
