// @title           RAGBot API
// @version         1.0.0
// @description     Backend do RAGBot: ingestão de PDFs e chat com recuperação aumentada.

// @contact.name    TCC RagBot

// @license.name    MIT

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package utils

//run redis (only for CONVERSATION_BACKEND=redis)
//docker run -p 6379:6379 -d redis

//run qdrant
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
