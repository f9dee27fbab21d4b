package main

import (
	"context"
	"io"
	"strings"

	"lovedu_client/internal/i18n"
	"lovedu_client/internal/models"
)

const chatHelp = `Commands:
  /new                 start a new chat
  /sessions            list saved chats
  /open <id>           open a saved chat
  /delete <id>         delete a saved chat
  /assistant <id>      switch assistant (typeX, references, academicReferences, therapyGPT, whatsTrendy)
  /lang <en|ar>        switch language
  /enroll <code>       enroll in a course and open its chat
  /course <id>         open the chat of an enrolled course
  /search <query>      filter saved chats
  /help                show this help
  /quit                leave`

func runChat(ctx context.Context, a *app, _ []string) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	stopAuth := a.watchAuth()
	defer stopAuth()
	stopLang := a.followLanguage()
	defer stopLang()

	if err := a.chat.Initialize(ctx); err != nil {
		a.fail(err)
	}
	a.renderConversation()

	for {
		if ctx.Err() != nil {
			return nil
		}
		a.printf("> ")
		line, err := a.prompt("")
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := a.chatCommand(ctx, line); quit {
				return nil
			}
			continue
		}

		a.println(a.t("chat.thinking"))
		if err := a.chat.Send(ctx, line); err != nil {
			if banner := a.chat.Banner(); banner != "" {
				a.println("!", banner)
			} else {
				a.fail(err)
			}
			continue
		}
		msgs := a.chat.Messages()
		a.printMessage(msgs[len(msgs)-1])
	}
}

// followLanguage keeps the chat welcome text in step with the language preference.
func (a *app) followLanguage() func() {
	events := a.lang.Subscribe()
	go func() {
		for ev := range events {
			if lang, err := i18n.ParseLang(ev.Value); err == nil {
				a.chat.SetLanguage(lang)
			}
		}
	}()
	return func() { a.lang.Unsubscribe(events) }
}

func (a *app) chatCommand(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true
	case "/help":
		a.println(chatHelp)
	case "/new":
		a.chat.NewChat()
		a.renderConversation()
	case "/sessions":
		sessions, err := a.chat.Sessions(ctx)
		if err != nil {
			a.println("!", a.t("chat.errors.failedToLoadSessions"))
			a.logger.Debug().Err(err).Msg("List sessions failed")
			return false
		}
		a.printSessions(sessions)
	case "/search":
		a.printSessions(a.chat.FilterSessions(arg))
	case "/open":
		if arg == "" {
			a.println("Usage: /open <id>")
			return false
		}
		if err := a.chat.SelectSession(ctx, arg); err != nil {
			a.println("!", a.chat.Banner())
			return false
		}
		a.renderConversation()
	case "/delete":
		if arg == "" {
			a.println("Usage: /delete <id>")
			return false
		}
		if err := a.chat.DeleteSession(ctx, arg); err != nil {
			a.fail(err)
			return false
		}
		a.println("Deleted.")
	case "/assistant":
		if err := a.chat.SelectAssistant(models.AssistantID(arg)); err != nil {
			a.fail(err)
			return false
		}
		a.renderConversation()
	case "/lang":
		if err := runLang(ctx, a, []string{arg}); err != nil {
			a.fail(err)
			return false
		}
		a.chat.SetLanguage(a.lang.Current())
		a.renderConversation()
	case "/enroll":
		enrollment, err := a.chat.EnrollCourse(ctx, arg)
		if err != nil {
			a.fail(err)
			return false
		}
		a.printf("%s %s\n", a.t("course.courseEnrolled"), enrollment.Course.Code)
		a.renderConversation()
	case "/course":
		ok, err := a.chat.OpenCourse(ctx, arg)
		if err != nil {
			a.fail(err)
			return false
		}
		if !ok {
			a.println("No chat found for that course. Enroll first with /enroll <code>.")
			return false
		}
		a.renderConversation()
	default:
		a.println("Unknown command. Type /help.")
	}
	return false
}

func (a *app) renderConversation() {
	a.printf("== %s ==\n", a.chat.Title())
	for _, m := range a.chat.Messages() {
		a.printMessage(m)
	}
	if a.chat.IsWelcomeOnly() || len(a.chat.Messages()) == 0 {
		for _, s := range a.chat.Suggestions() {
			a.printf("  * %s\n", s)
		}
	}
}

func (a *app) printMessage(m models.ChatMessage) {
	who := "you"
	if m.Role != models.RoleUser {
		who = "lovedu"
	}
	a.printf("[%s] %s\n", who, m.Content)
}

func (a *app) printSessions(sessions []models.ChatSession) {
	if len(sessions) == 0 {
		a.println("No chats.")
		return
	}
	current := a.chat.SessionID()
	for _, s := range sessions {
		marker := " "
		if s.ID == current {
			marker = "*"
		}
		label := a.chat.AssistantName(s.AssistantID)
		if s.HasCourse() {
			label = s.CourseName
		}
		a.printf("%s %s  %-28s %s\n", marker, s.ID, label, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
}
