package service

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coffeehouse/internal/domain"
	"coffeehouse/internal/events"
	"coffeehouse/internal/repository"
	"coffeehouse/internal/schedule"
)

const welcomeMessage = "Добро пожаловать! 👋 Чем могу помочь?"

// CafeReplies автоответы кафе
var CafeReplies = []string{
	"Спасибо за ваше сообщение! Мы обязательно ответим в ближайшее время.",
	"Понял! Передаю информацию нашим сотрудникам.",
	"Отлично! Мы работаем с 9:00 до 22:00. Доставка доступна с 10:00 до 21:00.",
	"Благодарим за отзыв! Мы рады, что вам понравилось! 😊",
	"Конечно! Можем помочь с выбором блюд или ответить на вопросы.",
}

var quickMessages = []string{
	"Здравствуйте! 👋",
	"Какое время работы?",
	"Есть ли доставка?",
	"Спасибо за отличный сервис!",
}

// ChatEvents получатель событий чата
type ChatEvents interface {
	PublishChatMessage(e events.ChatMessagePosted)
}

// ChatService журнал чата с отложенным автоответом
type ChatService struct {
	repo   *repository.ChatRepository
	tx     repository.TxManager
	sched  schedule.Scheduler
	delay  time.Duration
	events ChatEvents
	now    func() time.Time
	logger *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewChatService(repo *repository.ChatRepository, tx repository.TxManager, sched schedule.Scheduler,
	delay time.Duration, ev ChatEvents, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		repo:   repo,
		tx:     tx,
		sched:  sched,
		delay:  delay,
		events: ev,
		now:    time.Now,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Messages журнал в порядке отправки; пустой журнал начинается с приветствия
func (s *ChatService) Messages(ctx context.Context) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.seedWelcome(ctx)
		return err
	})
	return out, err
}

// Post сохраняет сообщение пользователя и планирует ответ.
// Пустой после обрезки пробелов текст игнорируется, результат nil.
func (s *ChatService) Post(ctx context.Context, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	msg := s.message(text, domain.SenderUser)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.seedWelcome(ctx); err != nil {
			return err
		}
		return s.repo.Append(ctx, msg)
	})
	if err != nil {
		return nil, err
	}
	session := repository.SessionFromContext(ctx)
	s.publish(session, msg)
	s.sched.After(s.delay, func() { s.reply(session) })
	return &msg, nil
}

// seedWelcome журнал сессии; в пустой сначала пишется приветствие
func (s *ChatService) seedWelcome(ctx context.Context) ([]domain.ChatMessage, error) {
	msgs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		return msgs, nil
	}
	welcome := s.message(welcomeMessage, domain.SenderCafe)
	if err := s.repo.Append(ctx, welcome); err != nil {
		return nil, err
	}
	return []domain.ChatMessage{welcome}, nil
}

// QuickMessages готовые фразы для быстрых кнопок
func (s *ChatService) QuickMessages() []string {
	return append([]string(nil), quickMessages...)
}

func (s *ChatService) reply(session string) {
	ctx := repository.WithSession(context.Background(), session)
	msg := s.message(s.pickReply(), domain.SenderCafe)
	if err := s.repo.Append(ctx, msg); err != nil {
		s.logger.Error("append chat reply", zap.String("session", session), zap.Error(err))
		return
	}
	s.publish(session, msg)
}

func (s *ChatService) pickReply() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CafeReplies[s.rnd.Intn(len(CafeReplies))]
}

func (s *ChatService) message(text string, sender domain.Sender) domain.ChatMessage {
	return domain.ChatMessage{ID: uuid.NewString(), Text: text, Sender: sender, Timestamp: s.now().UTC()}
}

func (s *ChatService) publish(session string, m domain.ChatMessage) {
	if s.events == nil {
		return
	}
	s.events.PublishChatMessage(events.ChatMessagePosted{Session: session, Message: m})
}
