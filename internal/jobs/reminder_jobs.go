package jobs

import (
	"context"
	"time"

	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/service"
)

// SendReturnReminders notifies customers whose rental period ends within the
// configured lookahead window. Each order is claimed by stamping
// reminder_sent_at before the email goes out, so a crashed or concurrent run
// never reminds twice.
func (jr *JobRunner) SendReturnReminders() {
	jr.runWithRecovery("SendReturnReminders", func() {
		ctx := context.Background()
		lookahead := jr.services.Settings.ReminderLookahead(ctx)
		now := time.Now()

		query := `
			UPDATE rental_orders o
			SET reminder_sent_at = NOW()
			WHERE o.status = 'PICKED_UP'
			  AND o.reminder_sent_at IS NULL
			  AND (SELECT MIN(i.end_date) FROM order_items i WHERE i.order_id = o.id) BETWEEN $1 AND $2
			RETURNING o.id, (SELECT MIN(i.end_date) FROM order_items i WHERE i.order_id = o.id)
		`

		rows, err := jr.db.QueryContext(ctx, query, now, now.Add(lookahead))
		if err != nil {
			logger.Error("Failed to claim orders for return reminders", "error", err)
			return
		}
		defer rows.Close()

		type claimed struct {
			OrderID int32
			EndDate time.Time
		}
		var due []claimed
		for rows.Next() {
			var c claimed
			if err := rows.Scan(&c.OrderID, &c.EndDate); err != nil {
				logger.Error("Failed to scan reminder claim", "error", err)
				continue
			}
			due = append(due, c)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating reminder claims", "error", err)
			return
		}

		logger.Info("Claimed orders for return reminders", "count", len(due))

		for _, c := range due {
			order, err := jr.store.OrderRepository.GetByID(ctx, c.OrderID)
			if err != nil {
				logger.Error("Failed to load order for reminder", "order_id", c.OrderID, "error", err)
				continue
			}
			if err := jr.services.Notifier.SendReturnReminder(ctx, order, c.EndDate); err != nil {
				// The claim stands even if delivery fails. A lost email is
				// preferable to a duplicate one.
				logger.Error("Failed to send return reminder", "order", order.OrderNumber, "error", err)
				continue
			}
			logger.Debug("Return reminder sent", "order", order.OrderNumber, "end_date", c.EndDate)
		}
	})
}

// SendOverdueAlerts notifies customers whose rental period has elapsed without
// a recorded return, with the late fee accrued so far. Like reminders, each
// order is alerted at most once via the overdue_alert_at stamp.
func (jr *JobRunner) SendOverdueAlerts() {
	jr.runWithRecovery("SendOverdueAlerts", func() {
		ctx := context.Background()
		now := time.Now()
		perDay := jr.services.Settings.LateFeePerDay(ctx)

		query := `
			UPDATE rental_orders o
			SET overdue_alert_at = NOW()
			WHERE o.status = 'PICKED_UP'
			  AND o.overdue_alert_at IS NULL
			  AND (SELECT MIN(i.end_date) FROM order_items i WHERE i.order_id = o.id) < $1
			RETURNING o.id, (SELECT MIN(i.end_date) FROM order_items i WHERE i.order_id = o.id)
		`

		rows, err := jr.db.QueryContext(ctx, query, now)
		if err != nil {
			logger.Error("Failed to claim orders for overdue alerts", "error", err)
			return
		}
		defer rows.Close()

		type claimed struct {
			OrderID int32
			EndDate time.Time
		}
		var overdue []claimed
		for rows.Next() {
			var c claimed
			if err := rows.Scan(&c.OrderID, &c.EndDate); err != nil {
				logger.Error("Failed to scan overdue claim", "error", err)
				continue
			}
			overdue = append(overdue, c)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating overdue claims", "error", err)
			return
		}

		logger.Info("Claimed orders for overdue alerts", "count", len(overdue))

		for _, c := range overdue {
			order, err := jr.store.OrderRepository.GetByID(ctx, c.OrderID)
			if err != nil {
				logger.Error("Failed to load order for overdue alert", "order_id", c.OrderID, "error", err)
				continue
			}
			daysLate, lateFee := service.LateFeeFor(c.EndDate, now, perDay)
			if err := jr.services.Notifier.SendLateReturnAlert(ctx, order, daysLate, lateFee); err != nil {
				logger.Error("Failed to send overdue alert", "order", order.OrderNumber, "error", err)
				continue
			}
			logger.Debug("Overdue alert sent",
				"order", order.OrderNumber,
				"days_late", daysLate,
				"late_fee", lateFee.String())
		}
	})
}
