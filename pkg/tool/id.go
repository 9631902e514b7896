package tool

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateOrderID returns a process-unique order id in the form
// "order_<unix>_<12 hex chars>". The provider treats it as opaque.
func GenerateOrderID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("order_%d_%s", time.Now().Unix(), suffix)
}
