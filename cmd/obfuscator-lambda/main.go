// Obfuscator Lambda entrypoint — handles direct invocation payloads and
// S3 upload notifications, masking the named fields of the referenced
// object in place.
package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/gdpr-toolkit/obfuscator/pkg/config"
	"github.com/gdpr-toolkit/obfuscator/pkg/engine"
	"github.com/gdpr-toolkit/obfuscator/pkg/handler"
	"github.com/gdpr-toolkit/obfuscator/pkg/storage"
	"github.com/gdpr-toolkit/obfuscator/pkg/version"
)

func main() {
	slog.Info("Starting obfuscator Lambda", "version", version.Full())

	h := handler.New(engine.New(storage.NewRouter(config.FromEnv())))

	lambda.Start(func(ctx context.Context, raw json.RawMessage) (engine.Result, error) {
		return h.Handle(ctx, raw), nil
	})
}
