// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aws

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/smithy-go/logging"
)

// S3Logger routes AWS SDK log output to our logger
type S3Logger struct {
	logger *slog.Logger
}

func NewS3Logger(logger *slog.Logger) *S3Logger {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &S3Logger{logger: logger}
}

func (l *S3Logger) Logf(
	classification logging.Classification,
	format string,
	v ...any,
) {
	msg := fmt.Sprintf(format, v...)
	switch classification {
	case logging.Warn:
		l.logger.Warn(msg, "component", "database")
	default:
		l.logger.Debug(msg, "component", "database")
	}
}
