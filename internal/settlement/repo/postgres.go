package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/bet-settlement-engine/internal/settlement/engine"
)

// ErrNotPending é o mesmo sentinela do motor, exposto aqui para quem usa o repo direto
var ErrNotPending = engine.ErrNotPending

// Postgres implementa engine.Store sobre bets, users, transactions,
// sportsbook_operators e game_round
type Postgres struct {
	db          *sql.DB
	stmtTimeout time.Duration
}

func NewPostgres(db *sql.DB, statementTimeout time.Duration) *Postgres {
	if statementTimeout <= 0 {
		statementTimeout = 5 * time.Second
	}
	return &Postgres{db: db, stmtTimeout: statementTimeout}
}

// statementTimeoutSQL monta o SET LOCAL; SET não aceita parâmetros posicionais
func statementTimeoutSQL(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("SET LOCAL statement_timeout = %d", ms)
}

// begin abre uma transação com statement_timeout local e prazo no contexto.
// A conexão volta ao pool no Commit/Rollback, nunca fica presa entre ciclos.
func (p *Postgres) begin(ctx context.Context, readOnly bool) (*sql.Tx, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*p.stmtTimeout)
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, statementTimeoutSQL(p.stmtTimeout)); err != nil {
		_ = tx.Rollback()
		cancel()
		return nil, nil, fmt.Errorf("set statement timeout: %w", err)
	}
	return tx, cancel, nil
}

// Ping é o check de liveness do poller
func (p *Postgres) Ping(ctx context.Context) error {
	var one int
	return p.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}

const betColumns = `
	b.id::text, b.user_id::text, COALESCE(u.operator_id::text, ''),
	COALESCE(b.match_id, ''), COALESCE(b.match_name, ''), COALESCE(b.sport_name, ''),
	COALESCE(b.selection, ''), b.stake, b.odds, b.potential_return, b.actual_return,
	b.status, b.combo_selections::text, b.created_at, b.settled_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBet(r rowScanner) (engine.Bet, error) {
	var (
		b       engine.Bet
		actual  decimal.NullDecimal
		status  string
		combo   sql.NullString
		settled sql.NullTime
	)
	err := r.Scan(&b.ID, &b.UserID, &b.OperatorID,
		&b.MatchID, &b.MatchName, &b.SportName,
		&b.Selection, &b.Stake, &b.Odds, &b.PotentialReturn, &actual,
		&status, &combo, &b.CreatedAt, &settled)
	if err != nil {
		return engine.Bet{}, err
	}
	b.Status = engine.ParseStatus(status)
	if actual.Valid {
		v := actual.Decimal
		b.ActualReturn = &v
	}
	if combo.Valid {
		b.ComboSelections = []byte(combo.String)
	}
	if settled.Valid {
		t := settled.Time
		b.SettledAt = &t
	}
	return b, nil
}

// ListPendingBets carrega todas as apostas pendentes na ordem de criação
func (p *Postgres) ListPendingBets(ctx context.Context) ([]engine.Bet, error) {
	tx, cancel, err := p.begin(ctx, true)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT `+betColumns+`
		FROM bets b JOIN users u ON u.id = b.user_id
		WHERE b.status = 'pending'
		ORDER BY b.created_at, b.id`)
	if err != nil {
		return nil, fmt.Errorf("query pending bets: %w", err)
	}
	defer rows.Close()

	var out []engine.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending bets: %w", err)
	}
	return out, tx.Commit()
}

// SettleBet re-lê a aposta com lock pessimista, aplica a decisão e, havendo
// crédito, atualiza o saldo e grava o ledger na mesma transação
func (p *Postgres) SettleBet(ctx context.Context, betID string, decide engine.Decision) (engine.SettleResult, error) {
	tx, cancel, err := p.begin(ctx, false)
	if err != nil {
		return engine.SettleResult{}, err
	}
	defer cancel()
	defer tx.Rollback()

	cur, err := scanBet(tx.QueryRowContext(ctx, `SELECT `+betColumns+`
		FROM bets b JOIN users u ON u.id = b.user_id
		WHERE b.id::text = $1
		FOR UPDATE OF b`, betID))
	if errors.Is(err, sql.ErrNoRows) {
		return engine.SettleResult{}, fmt.Errorf("bet %s: %w", betID, sql.ErrNoRows)
	}
	if err != nil {
		return engine.SettleResult{}, fmt.Errorf("refetch bet: %w", err)
	}
	if cur.Status != engine.StatusPending {
		return engine.SettleResult{}, ErrNotPending
	}

	s, ok, err := decide(cur)
	if err != nil {
		return engine.SettleResult{}, err
	}
	if !ok {
		return engine.SettleResult{}, ErrNotPending
	}

	var combo sql.NullString
	if s.ComboSelections != nil {
		combo = sql.NullString{String: string(s.ComboSelections), Valid: true}
	}
	res, err := tx.ExecContext(ctx, `UPDATE bets
		SET status = $2, actual_return = $3, settled_at = $4,
		    combo_selections = COALESCE($5::jsonb, combo_selections)
		WHERE id::text = $1 AND status = 'pending'`,
		betID, string(s.Status), s.ActualReturn, s.SettledAt, combo)
	if err != nil {
		return engine.SettleResult{}, fmt.Errorf("update bet: %w", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return engine.SettleResult{}, ErrNotPending
	}

	var before decimal.Decimal
	if err := tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE id::text = $1 FOR UPDATE`, cur.UserID).Scan(&before); err != nil {
		return engine.SettleResult{}, fmt.Errorf("lock user balance: %w", err)
	}
	after := before
	if s.Credit.IsPositive() {
		after = before.Add(s.Credit)
		if _, err := tx.ExecContext(ctx, `UPDATE users SET balance = $2 WHERE id::text = $1`, cur.UserID, after); err != nil {
			return engine.SettleResult{}, fmt.Errorf("credit balance: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO transactions
			(user_id, bet_id, amount, type, description, balance_before, balance_after, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			cur.UserID, cur.ID, s.Credit, string(s.TxType), s.Description, before, after, s.SettledAt); err != nil {
			return engine.SettleResult{}, fmt.Errorf("insert transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return engine.SettleResult{}, fmt.Errorf("commit settlement: %w", err)
	}
	return engine.SettleResult{Bet: cur, Applied: s, BalanceBefore: before, BalanceAfter: after}, nil
}

// UpdateComboSelections persiste o progresso das pernas sem mexer no status
func (p *Postgres) UpdateComboSelections(ctx context.Context, betID string, legs []byte) error {
	tx, cancel, err := p.begin(ctx, false)
	if err != nil {
		return err
	}
	defer cancel()
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE bets SET combo_selections = $2::jsonb
		WHERE id::text = $1 AND status = 'pending'`, betID, string(legs))
	if err != nil {
		return fmt.Errorf("update combo selections: %w", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return ErrNotPending
	}
	return tx.Commit()
}

// RecomputeOperatorRevenue recalcula total_revenue do zero a partir de bets e game_round
func (p *Postgres) RecomputeOperatorRevenue(ctx context.Context, operatorID string) (decimal.Decimal, error) {
	tx, cancel, err := p.begin(ctx, false)
	if err != nil {
		return decimal.Zero, err
	}
	defer cancel()
	defer tx.Rollback()

	var sb engine.SportsbookTotals
	if err := tx.QueryRowContext(ctx, `SELECT
			COALESCE(SUM(CASE WHEN b.status = 'lost' THEN b.stake END), 0),
			COALESCE(SUM(CASE WHEN b.status = 'won' THEN b.actual_return END), 0),
			COALESCE(SUM(CASE WHEN b.status = 'won' THEN b.stake END), 0)
		FROM bets b JOIN users u ON u.id = b.user_id
		WHERE u.operator_id::text = $1`, operatorID).
		Scan(&sb.LostStakes, &sb.WonPayouts, &sb.WonStakes); err != nil {
		return decimal.Zero, fmt.Errorf("sum sportsbook: %w", err)
	}

	var casino engine.CasinoTotals
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(g.stake), 0), COALESCE(SUM(g.payout), 0)
		FROM game_round g JOIN users u ON u.id = g.user_id
		WHERE u.operator_id::text = $1`, operatorID).
		Scan(&casino.Stakes, &casino.Payouts); err != nil {
		return decimal.Zero, fmt.Errorf("sum casino: %w", err)
	}

	total := engine.OperatorRevenue(sb, casino)
	if _, err := tx.ExecContext(ctx, `UPDATE sportsbook_operators SET total_revenue = $2 WHERE id::text = $1`,
		operatorID, total); err != nil {
		return decimal.Zero, fmt.Errorf("update total revenue: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("commit revenue: %w", err)
	}
	return total, nil
}

// CountByStatus resume as apostas por status; "voided" entra como "void"
func (p *Postgres) CountByStatus(ctx context.Context) (map[engine.Status]int, error) {
	tx, cancel, err := p.begin(ctx, true)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT status, COUNT(*) FROM bets GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count bets: %w", err)
	}
	defer rows.Close()

	out := map[engine.Status]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[engine.ParseStatus(status)] += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, tx.Commit()
}
