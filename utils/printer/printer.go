package printer

import (
	"fmt"
	_ "runtime" // import link package
	_ "unsafe"  // required by go:linkname

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Version information.
var (
	QIBuildTS   = "None"
	QIGitHash   = "None"
	QIGitBranch = "None"
)

//go:linkname buildVersion runtime.buildVersion
var buildVersion string

// PrintQIInfo prints the queryinspect version information.
func PrintQIInfo() {
	log.Info("Welcome to queryinspect.",
		zap.String("Git Commit Hash", QIGitHash),
		zap.String("Git Branch", QIGitBranch),
		zap.String("UTC Build Time", QIBuildTS),
		zap.String("GoVersion", buildVersion))
}

func GetQIInfo() string {
	return fmt.Sprintf("Git Commit Hash: %s\n"+
		"Git Branch: %s\n"+
		"UTC Build Time: %s\n"+
		"GoVersion: %s",
		QIGitHash,
		QIGitBranch,
		QIBuildTS,
		buildVersion)
}
