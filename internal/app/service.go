package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"gget/internal/adapters"
	"gget/internal/ports"
)

type Service struct {
	Parser ports.ImportParserPort
	Store  ports.PackageStorePort
	Clock  func() time.Time
}

func NewService(cacheDir string) Service {
	service := Service{
		Parser: adapters.NewGnoImportParser(),
		Clock:  time.Now,
	}
	root := cacheDir
	if root == "" {
		defaultRoot, err := adapters.DefaultStoreRoot()
		if err != nil {
			// run without the persistent cache rather than failing startup
			log.Warn().Err(err).Msg("persistent package cache disabled")
			return service
		}
		root = defaultRoot
	}
	service.Store = adapters.NewDiskStore(root, 0)
	return service
}
