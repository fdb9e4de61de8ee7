package logging

import (
	"github.com/fernandosanchezjr/goath9k/utils"
	"github.com/sirupsen/logrus"
	"os"
	"path"
	"testing"
)

func TestSetLevel(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)
	SetLevel("warn")
	if logrus.GetLevel() != logrus.WarnLevel {
		t.Fatalf("unexpected level %s", logrus.GetLevel())
	}
	SetLevel("nonsense")
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Fatalf("unknown levels should fall back to debug, got %s", logrus.GetLevel())
	}
}

func TestSetupLogger(t *testing.T) {
	home := t.TempDir()
	utils.SetHomeFolder(home)
	defer logrus.SetOutput(os.Stderr)
	defer Close()
	SetupLogger("info")
	logrus.Infoln("hello")
	if _, err := os.Stat(path.Join(home, LogPath, "log.out")); err != nil {
		t.Fatal(err)
	}
}
