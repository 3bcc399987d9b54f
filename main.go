package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/mux"

	"github.com/routedesk/authrelay/lib/myconfig"
	"github.com/routedesk/authrelay/lib/myhttp"
	"github.com/routedesk/authrelay/lib/myhttpclient"
	"github.com/routedesk/authrelay/lib/mystore"
	"github.com/routedesk/authrelay/lib/mytime"
	"github.com/routedesk/authrelay/lib/myuuid"
	"github.com/routedesk/authrelay/services/fulfillment"
	"github.com/routedesk/authrelay/services/oauth"
	"github.com/routedesk/authrelay/services/oauth/oauthclient"
	"github.com/routedesk/authrelay/services/oauth/secretstore"
	"github.com/routedesk/authrelay/services/upload"
)

func main() {
	c := context.Background()

	cfg, err := myconfig.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %s", err)
	}

	flowSecretsStore, tokenStore, storeCleanup, err := createStores(c, cfg)
	if err != nil {
		log.Fatalf("Error connecting to backing store: %s", err)
	}
	defer storeCleanup()

	router := mux.NewRouter()

	err = createOauthService(c, cfg, router, flowSecretsStore, tokenStore)
	if err != nil {
		log.Fatalf("Error creating oauth service: %s", err)
	}

	fulfillmentClient := fulfillment.NewRESTClient(fulfillment.Config{
		BaseURL: cfg.Fulfillment.BaseURL,
	}, myhttpclient.NewJSONHTTPClient())
	fulfillment.NewService(fulfillmentClient).RegisterEndpoints(c, router)

	s3Client, err := createS3Client(c, cfg.S3)
	if err != nil {
		log.Fatalf("Error creating object-storage client: %s", err)
	}
	upload.NewService(upload.Config{
		Bucket:           cfg.S3.Bucket,
		ACL:              cfg.S3.ACL,
		PicturesFolder:   cfg.S3.PicturesFolder,
		SignaturesFolder: cfg.S3.SignaturesFolder,
		PublicEndpoint:   cfg.S3.PublicEndpoint,
	}, s3Client, myuuid.RealUUIDer{}).RegisterEndpoints(c, router)

	router.NotFoundHandler = myhttp.NotFoundHandler()

	rateLimiter := myhttp.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)

	startWebServerBlocking(cfg.Addr(), rateLimiter.Middleware(router))
}

func createStores(c context.Context, cfg myconfig.Config) (mystore.Store[secretstore.FlowSecrets], mystore.Store[oauth.TokenData], func(), error) {
	if cfg.Store.Backend == myconfig.StoreBackendInmem {
		return mystore.NewInMemoryStore[secretstore.FlowSecrets](cfg.Secrets.TTL),
			mystore.NewInMemoryStore[oauth.TokenData](cfg.Secrets.TTL),
			func() {}, nil
	}

	client, cleanup, err := mystore.Connect(c, mystore.RedisConfig{
		Addr:            cfg.Store.RedisAddr,
		Password:        cfg.Store.RedisPassword,
		DB:              cfg.Store.RedisDB,
		ConnectAttempts: cfg.Store.ConnectAttempts,
		ConnectDelay:    cfg.Store.ConnectDelay,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	return mystore.NewRedisStore[secretstore.FlowSecrets](client, cfg.ServiceName+":flowsecrets", cfg.Secrets.TTL),
		mystore.NewRedisStore[oauth.TokenData](client, cfg.ServiceName+":token", cfg.Secrets.TTL),
		cleanup, nil
}

func createOauthService(c context.Context, cfg myconfig.Config, router *mux.Router, flowSecretsStore mystore.Store[secretstore.FlowSecrets], tokenStore mystore.Store[oauth.TokenData]) error {
	sameSite, err := cfg.Secrets.SameSite()
	if err != nil {
		return err
	}

	codec := secretstore.NewCodec(cfg.Secrets.CookieHashKey, cfg.Secrets.CookieBlockKey)
	settings := secretstore.CookieSettings{
		Domain:   cfg.Secrets.CookieDomain,
		Path:     cfg.Secrets.CookiePath,
		SameSite: sameSite,
		MaxAge:   int(cfg.Secrets.TTL.Seconds()),
	}

	var secretStore secretstore.SecretStore
	if cfg.Secrets.Backend == myconfig.SecretBackendCookie {
		secretStore = secretstore.NewCookieStore(codec, settings)
	} else {
		secretStore = secretstore.NewSessionStore(flowSecretsStore, codec, myuuid.RealUUIDer{}, settings)
	}

	oauthClient := oauthclient.NewOAuthClient(oauthclient.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		AuthURL:      cfg.OAuth.AuthURL,
		TokenURL:     cfg.OAuth.TokenURL,
		RedirectURI:  cfg.OAuth.RedirectURI,
		Scope:        cfg.OAuth.Scope,
	})

	oauth.NewService(oauth.Config{
		TokenDelivery: cfg.Flow.TokenDelivery,
		DashboardURL:  cfg.Flow.DashboardURL,
		HomeURL:       cfg.Flow.HomeURL,
	}, secretStore, tokenStore, mytime.RealNower{}, oauthClient).RegisterEndpoints(c, router)

	return nil
}

func createS3Client(c context.Context, cfg myconfig.S3Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(c,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func startWebServerBlocking(addr string, handler http.Handler) {
	log.Printf("Starting webserver on %s", addr)
	err := http.ListenAndServe(addr, handler)
	if err != nil {
		log.Fatalf("Error starting webserver on %s: %s", addr, err)
	}
}
