package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/telegive/authd/core"
)

const accountColumns = `id, bot_id, bot_token_encrypted, bot_username, bot_name,
	channel_id, channel_username, channel_title, channel_member_count,
	can_post_messages, can_edit_messages, can_send_media,
	is_active, bot_verified, channel_verified,
	created_at, last_login_at, last_bot_check_at`

func scanAccount(row pgx.Row) (*core.Account, error) {
	acc := &core.Account{}
	err := row.Scan(
		&acc.ID, &acc.BotID, &acc.TokenCiphertext, &acc.BotUsername, &acc.BotName,
		&acc.ChannelID, &acc.ChannelUsername, &acc.ChannelTitle, &acc.ChannelMemberCount,
		&acc.CanPostMessages, &acc.CanEditMessages, &acc.CanSendMedia,
		&acc.IsActive, &acc.BotVerified, &acc.ChannelVerified,
		&acc.CreatedAt, &acc.LastLoginAt, &acc.LastBotCheckAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

func (a *Adapter) CreateAccount(ctx context.Context, acc *core.Account) error {
	query := `INSERT INTO accounts
	          (bot_id, bot_token_encrypted, bot_username, bot_name,
	           channel_title, is_active, bot_verified, channel_verified)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at`

	err := a.pool.QueryRow(ctx, query,
		acc.BotID, acc.TokenCiphertext, acc.BotUsername, acc.BotName,
		acc.ChannelTitle, acc.IsActive, acc.BotVerified, acc.ChannelVerified,
	).Scan(&acc.ID, &acc.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAccountExists
		}
		return err
	}
	return nil
}

func (a *Adapter) GetAccountByID(ctx context.Context, id int64) (*core.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(a.pool.QueryRow(ctx, query, id))
}

func (a *Adapter) GetAccountByBotID(ctx context.Context, botID int64) (*core.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE bot_id = $1`
	return scanAccount(a.pool.QueryRow(ctx, query, botID))
}

func (a *Adapter) UpdateAccountToken(ctx context.Context, id int64, ciphertext string) error {
	tag, err := a.pool.Exec(ctx,
		`UPDATE accounts SET bot_token_encrypted = $1 WHERE id = $2`, ciphertext, id)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAccountExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

func (a *Adapter) TouchLogin(ctx context.Context, id int64) error {
	_, err := a.pool.Exec(ctx,
		`UPDATE accounts SET last_login_at = now() WHERE id = $1`, id)
	return err
}

func (a *Adapter) TouchBotCheck(ctx context.Context, id int64) error {
	_, err := a.pool.Exec(ctx,
		`UPDATE accounts SET last_bot_check_at = now() WHERE id = $1`, id)
	return err
}

func (a *Adapter) SetAccountActive(ctx context.Context, id int64, active bool) error {
	tag, err := a.pool.Exec(ctx,
		`UPDATE accounts SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

func (a *Adapter) ListAccounts(ctx context.Context, limit, offset int) ([]*core.Account, int, error) {
	var total int
	if err := a.pool.QueryRow(ctx, `SELECT count(*) FROM accounts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := a.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []*core.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}
