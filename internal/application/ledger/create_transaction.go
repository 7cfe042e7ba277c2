package ledger

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateTransactionUseCase única puerta de entrada para registrar transacciones.
// Valida, genera la referencia, verifica disponibilidad, persiste cabecera + ítems y
// agrega los movimientos en una sola unidad de trabajo (todo o nada).
type CreateTransactionUseCase struct {
	txRunner    TxRunner
	validator   *AvailabilityValidator
	references  *ReferenceGenerator
	writer      *MovementWriter
	invalidator CacheInvalidator
	recorder    Recorder
	log         zerolog.Logger
	opts        Options
}

// NewCreateTransactionUseCase construye el orquestador. invalidator y recorder pueden ser nil.
func NewCreateTransactionUseCase(
	txRunner TxRunner,
	invalidator CacheInvalidator,
	recorder Recorder,
	log zerolog.Logger,
	opts Options,
) *CreateTransactionUseCase {
	opts = opts.withDefaults()
	if invalidator == nil {
		invalidator = nopInvalidator{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &CreateTransactionUseCase{
		txRunner:    txRunner,
		validator:   NewAvailabilityValidator(),
		references:  NewReferenceGenerator(opts.Location),
		writer:      NewMovementWriter(),
		invalidator: invalidator,
		recorder:    recorder,
		log:         log,
		opts:        opts,
	}
}

// CreateTransaction registra la transacción. Errores posibles: *domain.ValidationError,
// *domain.InsufficientStockError o *domain.PersistenceError; en todos los casos no queda
// ninguna fila escrita.
func (uc *CreateTransactionUseCase) CreateTransaction(ctx context.Context, req TransactionRequest) (*entity.Transaction, error) {
	base, err := toEntity(req)
	if err != nil {
		var t entity.TransactionType
		if req != nil {
			t = req.Type()
		}
		uc.reject(t, err)
		return nil, err
	}
	t := base.Type
	return uc.commit(ctx, &t, func(context.Context, Session) (*entity.Transaction, error) {
		return base, nil
	})
}

// commit ejecuta la unidad de trabajo con reintentos ante conflictos de concurrencia.
// build arma la transacción base dentro de la sesión (cada intento parte de cero).
// La señal de invalidación se emite una sola vez y solo tras el commit.
// build puede fijar *t en cuanto conoce el tipo, para etiquetar rechazos y reintentos.
func (uc *CreateTransactionUseCase) commit(
	ctx context.Context,
	t *entity.TransactionType,
	build func(ctx context.Context, s Session) (*entity.Transaction, error),
) (*entity.Transaction, error) {
	start := uc.opts.Now()
	var created *entity.Transaction
	var err error
	for attempt := 0; ; attempt++ {
		created = nil
		err = uc.txRunner.Run(ctx, func(ctx context.Context, s Session) error {
			base, err := build(ctx, s)
			if err != nil {
				return err
			}
			*t = base.Type
			txn, err := uc.createInSession(ctx, s, base)
			if err != nil {
				return err
			}
			created = txn
			return nil
		})
		if err == nil || !domain.IsRetryable(err) || attempt >= uc.opts.MaxRetries || ctx.Err() != nil {
			break
		}
		uc.recorder.CommitRetried(*t)
		uc.log.Info().Err(err).Int("attempt", attempt+1).Str("type", string(*t)).Msg("conflicto de concurrencia, reintentando transacción")
	}
	if err != nil {
		uc.reject(*t, err)
		return nil, err
	}

	uc.invalidator.TransactionCommitted(ctx, created)
	uc.recorder.TransactionCommitted(created.Type, len(created.Items), uc.opts.Now().Sub(start))
	uc.log.Info().
		Str("reference", created.ReferenceNumber).
		Str("type", string(created.Type)).
		Int("items", len(created.Items)).
		Msg("transacción registrada")
	return created, nil
}

// createInSession pasos 2–6 dentro de la sesión activa.
func (uc *CreateTransactionUseCase) createInSession(ctx context.Context, s Session, base *entity.Transaction) (*entity.Transaction, error) {
	txn := withIdentity(base)
	if err := checkCatalog(ctx, s, txn); err != nil {
		return nil, err
	}

	txn.CreatedAt = uc.opts.Now()
	ref, err := uc.references.Generate(ctx, s, txn.CreatedAt)
	if err != nil {
		return nil, err
	}
	txn.ReferenceNumber = ref

	// Bloqueo por producto antes de leer saldos; se mantiene hasta el commit.
	ids := txn.ProductIDs()
	sort.Strings(ids)
	if err := s.LockProducts(ctx, ids); err != nil {
		return nil, err
	}
	allowNegative := txn.Type.AllowsNegative()
	result, err := uc.validator.Check(ctx, s.Movements(), txn.Type, stockRequests(txn.Items), allowNegative)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, result.Err()
	}

	txn.TotalValue = totalValue(txn.Items)
	if err := s.Transactions().Create(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.Transactions().CreateItems(ctx, txn.Items); err != nil {
		return nil, err
	}
	movements, err := uc.writer.Write(ctx, s, txn, allowNegative, uc.opts.Now)
	if err != nil {
		return nil, err
	}
	txn.Movements = movements
	return txn, nil
}

// checkCatalog verifica que productos y proveedor existan (lectura, antes de escribir).
func checkCatalog(ctx context.Context, s Session, txn *entity.Transaction) error {
	products, err := s.Products().GetMany(ctx, txn.ProductIDs())
	if err != nil {
		return err
	}
	var fields []domain.FieldError
	for i, it := range txn.Items {
		if _, ok := products[it.ProductID]; !ok {
			fields = append(fields, fieldErr(i, "product_id", "el producto no existe"))
		}
	}
	if txn.SupplierID != "" {
		supplier, err := s.Suppliers().GetByID(ctx, txn.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil {
			fields = append(fields, domain.FieldError{Field: "supplier_id", Message: "el proveedor no existe"})
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (uc *CreateTransactionUseCase) reject(t entity.TransactionType, err error) {
	kind := domain.KindOf(err)
	reason := kind.String()
	notFound := kind == 0 && errors.Is(err, domain.ErrNotFound)
	switch {
	case notFound:
		reason = "NOT_FOUND"
	case kind == 0:
		reason = "OTHER"
	}
	uc.recorder.TransactionRejected(t, reason)
	ev := uc.log.Warn()
	if kind == domain.KindPersistence || (kind == 0 && !notFound) {
		ev = uc.log.Error()
	}
	ev.Err(err).Str("type", string(t)).Str("reason", reason).Msg("transacción rechazada")
}
