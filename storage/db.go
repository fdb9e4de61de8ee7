package storage

import (
	"github.com/fernandosanchezjr/goath9k/utils"
	"go.etcd.io/bbolt"
	"path"
	"time"
)

const DBPath = "db"

func GetDBPath() string {
	return path.Join(utils.GetSubFolder(DBPath), "journal.db")
}

func OpenDB(dbPath string) (*bbolt.DB, error) {
	return bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
}
