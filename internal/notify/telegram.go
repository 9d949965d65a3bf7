package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/matchday-bet/matchday/internal/metrics"
	"github.com/matchday-bet/matchday/internal/models"
	log "github.com/sirupsen/logrus"
)

// Min interval between two messages to the same chat; Telegram throttles around 30/min.
const telegramSendInterval = 2 * time.Second

const telegramQueueSize = 100

// Sender is the part of tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier queues notifications and sends them to one chat in the background.
type TelegramNotifier struct {
	sender   Sender
	chatID   int64
	interval time.Duration

	queue  chan Message
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewTelegramBot connects to the Bot API and verifies the token.
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("notify: empty telegram token")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	return bot, nil
}

// NewTelegramNotifier starts the sender loop. Call Close to flush and stop it.
func NewTelegramNotifier(sender Sender, chatID int64) *TelegramNotifier {
	return newTelegramNotifier(sender, chatID, telegramSendInterval)
}

func newTelegramNotifier(sender Sender, chatID int64, interval time.Duration) *TelegramNotifier {
	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		sender:   sender,
		chatID:   chatID,
		interval: interval,
		queue:    make(chan Message, telegramQueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	n.wg.Add(1)
	go n.run()
	log.WithField("chat_id", chatID).Info("telegram notifier initialized")
	return n
}

// UserRegistered queues a registration notice.
func (n *TelegramNotifier) UserRegistered(ctx context.Context, user *models.User) {
	n.enqueue(userRegisteredMessage(user))
}

// VIPPaymentClaimed queues a VIP payment claim for manual verification.
func (n *TelegramNotifier) VIPPaymentClaimed(ctx context.Context, user *models.User) {
	n.enqueue(vipPaymentMessage(user))
}

// WithdrawalRequested queues a withdrawal notice.
func (n *TelegramNotifier) WithdrawalRequested(ctx context.Context, user *models.User, withdrawal *models.Transaction) {
	n.enqueue(withdrawalMessage(user, withdrawal))
}

// Close stops accepting messages, sends what is queued and waits for the sender loop.
func (n *TelegramNotifier) Close() error {
	n.cancel()
	n.wg.Wait()
	return nil
}

func (n *TelegramNotifier) enqueue(msg Message) {
	select {
	case <-n.ctx.Done():
		metrics.NotificationsSent.WithLabelValues(msg.Kind, "dropped").Inc()
		log.WithField("kind", msg.Kind).Warn("telegram notifier: closed, message dropped")
		return
	default:
	}
	select {
	case n.queue <- msg:
	default:
		metrics.NotificationsSent.WithLabelValues(msg.Kind, "dropped").Inc()
		log.WithField("kind", msg.Kind).Warn("telegram notifier: queue full, message dropped")
	}
}

func (n *TelegramNotifier) run() {
	defer n.wg.Done()
	var lastSend time.Time
	for {
		select {
		case <-n.ctx.Done():
			for {
				select {
				case msg := <-n.queue:
					n.send(msg)
				default:
					return
				}
			}
		case msg := <-n.queue:
			if wait := n.interval - time.Since(lastSend); wait > 0 && !lastSend.IsZero() {
				timer := time.NewTimer(wait)
				select {
				case <-n.ctx.Done():
					timer.Stop()
				case <-timer.C:
				}
			}
			n.send(msg)
			lastSend = time.Now()
		}
	}
}

func (n *TelegramNotifier) send(msg Message) {
	if _, err := n.sender.Send(tgbotapi.NewMessage(n.chatID, msg.Text)); err != nil {
		metrics.NotificationsSent.WithLabelValues(msg.Kind, "error").Inc()
		log.WithError(err).WithField("kind", msg.Kind).Error("telegram send failed")
		return
	}
	metrics.NotificationsSent.WithLabelValues(msg.Kind, "ok").Inc()
	log.WithField("kind", msg.Kind).Debug("telegram send: success")
}
