package bus

import (
	"fmt"
	"strings"

	"github.com/paperval/paperval/internal/config"
	"github.com/paperval/paperval/internal/pkg/errors"
	"github.com/paperval/paperval/internal/pkg/logger"
)

// NewBus creates an event bus from configuration. The bus type defaults
// to the in-process memory bus when unset.
func NewBus(cfg config.BusConfig, log *logger.Logger) (Bus, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "memory":
		return NewMemoryBus(log), nil
	case "kafka":
		return NewKafkaBus(KafkaConfig{
			Brokers:       ParseKafkaBrokers(cfg.KafkaBrokers),
			ConsumerGroup: cfg.KafkaGroup,
		}, log)
	default:
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown bus type: %s", cfg.Type))
	}
}
