package observability

import (
	"net/http"
	_ "net/http/pprof"
	"os"

	log "github.com/sirupsen/logrus"
)

// StartProfiling exposes the pprof handlers on PPROF_ADDR when set.
// It is a no-op otherwise, so production deployments opt in explicitly.
func StartProfiling(service string) {
	addr := os.Getenv("PPROF_ADDR")
	if addr == "" {
		return
	}
	go func() {
		log.Infof("pprof listening service=%s addr=%s", service, addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Errorf("pprof server exited service=%s error=%v", service, err)
		}
	}()
}
