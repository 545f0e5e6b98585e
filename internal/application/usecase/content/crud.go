package content

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

var tracer = otel.Tracer("content_usecase")

// CRUDUseCase is the store boundary for one content table: rows are
// cleaned and validated here before they reach the table, and every write
// is announced on the change publisher.
type CRUDUseCase[T content.Record[T]] struct {
	table     content.Table[T]
	publisher content.Publisher
	clean     func(T) T
	order     []content.Order
	logger    logger.Logger
	now       func() time.Time
}

func NewCRUDUseCase[T content.Record[T]](table content.Table[T], publisher content.Publisher, clean func(T) T, order []content.Order, log logger.Logger) *CRUDUseCase[T] {
	if clean == nil {
		clean = func(row T) T { return row }
	}
	return &CRUDUseCase[T]{
		table:     table,
		publisher: publisher,
		clean:     clean,
		order:     order,
		logger:    log.With(zap.String("table", table.Name())),
		now:       time.Now,
	}
}

func (uc *CRUDUseCase[T]) Table() string { return uc.table.Name() }

type ListInput struct {
	Eq map[string]any
}

func (uc *CRUDUseCase[T]) List(ctx context.Context, input ListInput) ([]T, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()
	span.SetAttributes(attribute.String("table", uc.table.Name()))

	rows, err := uc.table.Select(ctx, content.Query{Eq: input.Eq, Order: uc.order})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return rows, nil
}

func (uc *CRUDUseCase[T]) Get(ctx context.Context, id int64) (T, error) {
	return uc.table.Get(ctx, id)
}

func (uc *CRUDUseCase[T]) prepare(row T) (T, error) {
	row = uc.clean(row)
	if err := row.Validate(); err != nil {
		var zero T
		return zero, apperror.NewValidation(err.Error())
	}
	return row, nil
}

// Create inserts row under a new key; any key on row is ignored.
func (uc *CRUDUseCase[T]) Create(ctx context.Context, row T) (T, error) {
	ctx, span := tracer.Start(ctx, "Create")
	defer span.End()
	span.SetAttributes(attribute.String("table", uc.table.Name()))

	row, err := uc.prepare(row.WithKey(0))
	if err != nil {
		return row, err
	}
	saved, err := uc.table.Insert(ctx, row)
	if err != nil {
		span.RecordError(err)
		return saved, err
	}
	uc.publish(ctx, content.OpInsert, saved.Key(), saved.Image(), "")
	return saved, nil
}

func (uc *CRUDUseCase[T]) Update(ctx context.Context, id int64, row T) (T, error) {
	ctx, span := tracer.Start(ctx, "Update")
	defer span.End()
	span.SetAttributes(attribute.String("table", uc.table.Name()), attribute.Int64("id", id))

	row, err := uc.prepare(row.WithKey(id))
	if err != nil {
		return row, err
	}
	prev, err := uc.table.Get(ctx, id)
	if err != nil {
		return prev, err
	}
	saved, err := uc.table.Update(ctx, id, row)
	if err != nil {
		span.RecordError(err)
		return saved, err
	}
	uc.publish(ctx, content.OpUpdate, id, saved.Image(), prev.Image())
	return saved, nil
}

// Upsert writes row under its own key, creating it if needed.
func (uc *CRUDUseCase[T]) Upsert(ctx context.Context, row T) (T, error) {
	ctx, span := tracer.Start(ctx, "Upsert")
	defer span.End()

	row, err := uc.prepare(row)
	if err != nil {
		return row, err
	}

	previousImage := ""
	op := content.OpInsert
	if prev, err := uc.table.Get(ctx, row.Key()); err == nil {
		previousImage = prev.Image()
		op = content.OpUpdate
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return prev, err
	}

	saved, err := uc.table.Upsert(ctx, row)
	if err != nil {
		span.RecordError(err)
		return saved, err
	}
	uc.publish(ctx, op, saved.Key(), saved.Image(), previousImage)
	return saved, nil
}

func (uc *CRUDUseCase[T]) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "Delete")
	defer span.End()
	span.SetAttributes(attribute.String("table", uc.table.Name()), attribute.Int64("id", id))

	prev, err := uc.table.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.table.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	uc.publish(ctx, content.OpDelete, id, "", prev.Image())
	return nil
}

// publish never fails the write that triggered it.
func (uc *CRUDUseCase[T]) publish(ctx context.Context, op content.Operation, id int64, image, previous string) {
	if uc.publisher == nil {
		return
	}
	e := content.ChangeEvent{
		Table:            uc.table.Name(),
		Operation:        op,
		ID:               id,
		ImageURL:         image,
		PreviousImageURL: previous,
		At:               uc.now().UTC(),
	}
	if err := uc.publisher.Publish(ctx, e); err != nil {
		uc.logger.Warn("Failed to publish change event",
			zap.String("operation", string(op)),
			zap.Int64("id", id),
			zap.Error(err),
		)
	}
}
