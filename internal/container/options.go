package container

// Options is the humacli configuration surface for both binaries.
type Options struct {
	Port           int    `default:"8888"              help:"Port to listen on"                                       short:"p"`
	RedisAddr      string `default:"localhost:6379"    help:"Redis server address"                                    short:"r"`
	CatalogBackend string `default:"memory"            enum:"memory,postgres,shopify"                                 help:"Backing catalog implementation"`
	PostgresDSN    string `default:""                  help:"PostgreSQL connection string (postgres backend)"`
	ShopDomain     string `default:""                  help:"Shop domain, e.g. example.myshopify.com (shopify backend)"`
	ShopToken      string `default:""                  help:"Admin API access token (shopify backend)"`
	RecordType     string `default:"custom_post_views" help:"Catalog record type holding view counters"`
	PageSize       int    `default:"50"                help:"Records fetched per catalog page"`
	MaxPages       int    `default:"20"                help:"Hard ceiling on catalog pages per scan"`
	StoreTimeout   int    `default:"10"                help:"Seconds before a catalog call times out"`
	FlushInterval  int    `default:"30"                help:"Seconds between automatic flush cycles"`
	FlushToken     string `default:""                  help:"Shared secret required by POST /flush (empty disables the check)"`
	CacheTTL       int    `default:"0"                 help:"Seconds to cache catalog pages in Redis (0 disables the cache)"`
	LogFormat      string `default:"console"           enum:"console,json"                                            help:"Log output format"`
}
