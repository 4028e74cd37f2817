// Package sdk is a Go client for a running graphrag server.
//
//	client, _ := sdk.New("http://localhost:8000",
//	    sdk.WithLogger(slog.Default()),
//	    sdk.WithPrometheus(prometheus.DefaultRegisterer),
//	)
//	res, err := client.Ask(ctx, "¿Cuántos triples hay en el grafo?", 2)
//	if err != nil {
//	    return err // transport failure or rejected request
//	}
//	if res.OK() {
//	    fmt.Println(*res.Answer)
//	}
//
// To answer questions in-process without a server, use the root graphrag package.
package sdk
