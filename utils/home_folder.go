package utils

import (
	"flag"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
)

const DefaultHomeFolder = "~/.goath9k"

var (
	homeMtx    sync.Mutex
	homeFolder = DefaultHomeFolder
)

func init() {
	flag.StringVar(&homeFolder, "home-folder", DefaultHomeFolder, "folder for logs and the binding journal")
}

// SetHomeFolder overrides -home-folder, mostly for tests.
func SetHomeFolder(folder string) {
	homeMtx.Lock()
	defer homeMtx.Unlock()
	homeFolder = folder
}

// EnsureFolder expands a leading ~ in folder and creates it if missing.
func EnsureFolder(folder string) (string, error) {
	expanded, err := homedir.Expand(folder)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(expanded, 0700); err != nil {
		return "", err
	}
	return expanded, nil
}

func GetHomeFolder() string {
	homeMtx.Lock()
	folder := homeFolder
	homeMtx.Unlock()
	expanded, err := EnsureFolder(folder)
	if err != nil {
		log.WithFields(log.Fields{
			"folder": folder,
			"error":  err,
		}).Fatal("Could not prepare home folder")
	}
	return expanded
}

func GetSubFolder(name string) string {
	folder := filepath.Join(GetHomeFolder(), name)
	expanded, err := EnsureFolder(folder)
	if err != nil {
		log.WithFields(log.Fields{
			"folder": folder,
			"error":  err,
		}).Fatal("Could not prepare sub folder")
	}
	return expanded
}
