/*Package metrics wraps datadog-go to faciliate metric recording
Following are naming convention of metric:
- Internal process time: *.time
- Error: *.err
*/
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/spf13/viper"

	"github.com/neonmarket/goapi/base/log"
)

// ddRate is the rate to pass metrics to datadog agent. 1 means always
const ddRate = 1

var (
	initOnce sync.Once
	ddClient *statsd.Client
)

func initDDClient() {
	host := viper.GetString("datadog_host")
	if host == "" {
		// metrics become no-ops when no agent is configured
		return
	}
	addr := fmt.Sprintf("%s:%d", host, 8125)
	log.Log().WithField("addr", addr).Info("connecting to datadog agent")

	client, err := statsd.NewBuffered(addr, 10)
	if err != nil {
		log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Panic(
			"can't talk to datadog agent")
	}
	ddClient = client
}

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpSum(key string, val float64, tags ...string)
	BumpTime(key string, tags ...string) Ender
}

type service struct {
	prefix string
}

// New creates a metric client with package name as prefix
func New(pkgName string) Service {
	initOnce.Do(initDDClient)
	return &service{prefix: pkgName + "."}
}

func (s *service) BumpSum(key string, val float64, tags ...string) {
	if ddClient == nil {
		return
	}
	if err := ddClient.Count(s.prefix+key, int64(val), toDDTags(tags), ddRate); err != nil {
		log.Log().WithFields(log.Fields{"key": key, "err": err}).Warn("failed to bump sum")
	}
}

type timeEnder struct {
	service *service
	key     string
	tags    []string
	start   time.Time
}

func (e *timeEnder) End() {
	if ddClient == nil {
		return
	}
	elapsed := float64(time.Since(e.start)) / float64(time.Millisecond)
	if err := ddClient.TimeInMilliseconds(e.service.prefix+e.key, elapsed, toDDTags(e.tags), ddRate); err != nil {
		log.Log().WithFields(log.Fields{"key": e.key, "err": err}).Warn("failed to bump time")
	}
}

func (s *service) BumpTime(key string, tags ...string) Ender {
	return &timeEnder{service: s, key: key, tags: tags, start: time.Now()}
}

// toDDTags pairs up "key", "value" varargs the datadog way: "key:value"
func toDDTags(tags []string) []string {
	out := make([]string, 0, len(tags)/2)
	for i := 0; i+1 < len(tags); i += 2 {
		out = append(out, tags[i]+":"+tags[i+1])
	}
	return out
}
