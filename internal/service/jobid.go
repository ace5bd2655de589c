package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const jobIDPrefix = "job"

// NewJobID returns a job identifier built from a fixed prefix, 48 random bits and
// the creation time in base36 milliseconds, e.g. job_3f2a9c01b7de_lx2k9a1q.
func NewJobID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_%s_%s", jobIDPrefix, random, strconv.FormatInt(time.Now().UnixMilli(), 36))
}
