// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package sqlitedb

import "go.opentelemetry.io/otel"

var tracer = otel.GetTracerProvider().Tracer("github.com/vowlist/core/internal/db/sqlitedb")
