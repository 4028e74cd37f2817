// Package graphrag answers natural-language questions over the UNIBASQ
// knowledge graph. It retrieves schema and content cards by similarity,
// answers score threshold questions directly from them and otherwise asks a
// language model for a read-only SPARQL query, checks it against the query
// policy, runs it and phrases the result.
//
//	client, err := graphrag.New(ctx,
//	    graphrag.WithCardStore("index", "", ""),
//	    graphrag.WithSPARQL("http://localhost:3030/unibasq/query"),
//	    graphrag.WithOllama("http://localhost:11434", "llama3.1:8b"),
//	    graphrag.WithEmbeddingServer("http://localhost:8081/v1", "", "sentence-transformers/all-MiniLM-L6-v2"),
//	)
//	res := client.Ask(ctx, "¿Cuántos triples hay en el grafo?", graphrag.DefaultMaxRetries)
//
// Ask never returns an error: failures are reported in AskResult.Error.
package graphrag
