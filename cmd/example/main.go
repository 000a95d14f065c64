package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/A13xB0/GoOperator"
	"github.com/A13xB0/GoOperator/service"
	"github.com/A13xB0/GoOperator/types"
)

func main() {
	handler := func(ctx *service.Context) (types.Payload, error) {
		text := ctx.GetServiceData("ocr")
		if text == nil {
			// OCR has not run yet, ask the operator to come back later.
			ctx.Retry(0)
		}

		words, ok := text.(string)
		if !ok {
			ctx.Abort(fmt.Sprintf("unexpected ocr payload for tenant %s", ctx.GetTenantName()))
		}

		return map[string]any{"length": len(words)}, nil
	}

	sub, err := GoOperator.Subscribe(GoOperator.Config{
		URL:      "redis://localhost:6379",
		Version:  "1.0.0",
		Prefetch: 4,
	}, handler)
	if err != nil {
		panic(err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	if err := sub.Unsubscribe(context.Background()); err != nil {
		panic(err)
	}
}
