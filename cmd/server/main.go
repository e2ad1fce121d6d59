package main

import (
	"context"
	"encoding/hex"
	"log"

	"github.com/null-create/mcp-guard/pkg/baseline"
	"github.com/null-create/mcp-guard/pkg/config"
	"github.com/null-create/mcp-guard/pkg/server"
	"github.com/null-create/mcp-guard/pkg/verify"
)

func main() {
	cfgs := config.LoadConfig()

	store, err := buildStore(cfgs)
	if err != nil {
		log.Fatalf("failed to initialize baseline store: %v", err)
	}

	verifier := verify.NewVerifier(store)
	router := server.NewRouter(server.NewHandler(verifier))

	if cfgs.TLSEnabled {
		err := server.StartSecureServer(server.TLSOptions{
			CertFile:          cfgs.TLSCertFile,
			KeyFile:           cfgs.TLSKeyFile,
			ClientCAFile:      cfgs.TLSClientCAFile, // Optional
			RequireClientCert: false,                // Set to true if mTLS is needed
			Addr:              ":" + cfgs.ServerPort,
		}, router)

		if err != nil {
			log.Fatalf("TLS server failed: %v", err)
		}
	} else {
		svr := server.NewServer("localhost:"+cfgs.ServerPort, router)
		svr.Run()
	}
}

func buildStore(cfgs config.Config) (baseline.Store, error) {
	switch cfgs.StoreBackend {
	case config.BackendMemory:
		return baseline.NewMemoryStore(), nil
	case config.BackendBolt:
		return baseline.OpenBoltStore(cfgs.StorePath)
	case config.BackendRedis:
		return baseline.NewRedisStore(cfgs.RedisAddr, cfgs.RedisPassword, cfgs.RedisDB), nil
	case config.BackendMongo:
		return baseline.NewMongoStore(context.Background(),
			cfgs.MongoURI, cfgs.MongoDatabase, cfgs.MongoCollection)
	default:
		if cfgs.SealEncryptionKey != "" || cfgs.SealSigningKey != "" {
			encKey, err := hex.DecodeString(cfgs.SealEncryptionKey)
			if err != nil {
				return nil, err
			}
			sigKey, err := hex.DecodeString(cfgs.SealSigningKey)
			if err != nil {
				return nil, err
			}
			sealer, err := baseline.NewSealer(encKey, sigKey)
			if err != nil {
				return nil, err
			}
			return baseline.NewSealedFileStore(cfgs.StorePath, sealer), nil
		}
		return baseline.NewFileStore(cfgs.StorePath), nil
	}
}
