package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/vectorDB"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

const (
	payloadDocumentId     = "document_id"
	payloadDocName        = "doc_name"
	payloadContent        = "content"
	payloadPageNum        = "page_num"
	payloadChunkIndex     = "chunk_index"
	payloadTotalChunks    = "total_chunks"
	payloadSource         = "source"
	payloadEmbeddingModel = "embedding_model"
)

// pointsAPI is the part of *qdrant.Client the index uses.
type pointsAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	CreateFieldIndex(ctx context.Context, request *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
}

type Options struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Dimension  int
}

type ClientHolder struct {
	api        pointsAPI
	closer     func() error
	collection string
	dimension  uint64
	batchSize  int
	logger     *logger_i.Logger
}

var _ vectorDB.Index = (*ClientHolder)(nil)

// NewQdrantIndex connects over gRPC and makes sure the collection exists.
func NewQdrantIndex(ctx context.Context, opts Options) (*ClientHolder, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     opts.Host,
		Port:     opts.Port,
		APIKey:   opts.APIKey,
		UseTLS:   opts.UseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	holder := newClientHolder(client, opts.Collection, opts.Dimension)
	holder.closer = client.Close

	setupCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	if err := holder.EnsureCollection(setupCtx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return holder, nil
}

func newClientHolder(api pointsAPI, collection string, dimension int) *ClientHolder {
	return &ClientHolder{
		api:        api,
		collection: collection,
		dimension:  uint64(dimension),
		batchSize:  config.QdrantUpsertBatchSize,
		logger:     logger_i.NewLogger("Qdrant"),
	}
}

func (db *ClientHolder) Close() error {
	if db.closer == nil {
		return nil
	}
	db.logger.Info("Shutting down Qdrant")
	return db.closer()
}

func (db *ClientHolder) EnsureCollection(ctx context.Context) error {
	if db.collection == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.api.CollectionExists(ctx, db.collection)
	if err != nil {
		return classify(err, "checking collection")
	}
	if exists {
		return nil
	}

	db.logger.Info("Creating collection", "collection", db.collection, "dimension", db.dimension)
	err = db.api.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return classify(err, "creating collection")
	}

	// deletes filter on document_id
	_, err = db.api.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: db.collection,
		FieldName:      payloadDocumentId,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return classify(err, "creating document_id index")
	}
	return nil
}

func (db *ClientHolder) Upsert(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return ragErrors.Validation("got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	// one request per batch keeps large documents under the gRPC message limit
	for start := 0; start < len(chunks); start += db.batchSize {
		end := min(start+db.batchSize, len(chunks))
		if err := db.upsertBatch(ctx, chunks[start:end], vectors[start:end]); err != nil {
			db.logger.FromContext(ctx).Error("Qdrant upsert failed", "batchStart", start, "points", end-start, "total", len(chunks), "error", err)
			return classify(err, "upserting points")
		}
	}
	return nil
}

func (db *ClientHolder) upsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadDocumentId:     chunk.DocumentId,
				payloadDocName:        chunk.DocName,
				payloadContent:        chunk.Content,
				payloadPageNum:        int64(chunk.PageNum),
				payloadChunkIndex:     int64(chunk.ChunkIndex),
				payloadTotalChunks:    int64(chunk.TotalChunks),
				payloadSource:         chunk.Source,
				payloadEmbeddingModel: chunk.EmbeddingModel,
			}),
		}
	}

	_, err := db.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	return err
}

func (db *ClientHolder) Search(ctx context.Context, vector []float32, k int) ([]commonModels.RetrievedChunk, error) {
	if k <= 0 {
		return []commonModels.RetrievedChunk{}, nil
	}
	log := db.logger.FromContext(ctx)

	hits, err := db.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		if isNotFound(err) {
			log.Warn("Collection missing, treating as empty", "collection", db.collection)
			return []commonModels.RetrievedChunk{}, nil
		}
		log.Error("Error querying Qdrant", "error", err)
		return nil, classify(err, "querying points")
	}

	results := make([]commonModels.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		results = append(results, commonModels.RetrievedChunk{
			ChunkId:    hit.GetId().GetUuid(),
			DocumentId: hit.Payload[payloadDocumentId].GetStringValue(),
			DocName:    hit.Payload[payloadDocName].GetStringValue(),
			Content:    hit.Payload[payloadContent].GetStringValue(),
			PageNum:    int(hit.Payload[payloadPageNum].GetIntegerValue()),
			ChunkIndex: int(hit.Payload[payloadChunkIndex].GetIntegerValue()),
			Similarity: vectorDB.SimilarityFromCosine(hit.GetScore()),
		})
	}
	log.Debug("Found matches", "count", len(results))
	return vectorDB.RankTopK(results, k), nil
}

func (db *ClientHolder) DeleteByDocument(ctx context.Context, documentId string) (int, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch(payloadDocumentId, documentId)},
	}

	count, err := db.api.Count(ctx, &qdrant.CountPoints{
		CollectionName: db.collection,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, classify(err, "counting document points")
	}
	if count == 0 {
		return 0, nil
	}

	_, err = db.api.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collection,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, classify(err, "deleting document points")
	}
	db.logger.FromContext(ctx).Info("Deleted document points", "documentId", documentId, "count", count)
	return int(count), nil
}

func (db *ClientHolder) TestConnection(ctx context.Context) bool {
	if _, err := db.api.HealthCheck(ctx); err != nil {
		db.logger.Warn("Qdrant health check failed", "error", err)
		return false
	}
	return true
}
