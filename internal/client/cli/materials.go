package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/common"
)

const quizLength = 5

func (a *App) listMaterials(_ context.Context, _ []string) error {
	all := a.cache.All()
	if len(all) == 0 {
		a.printf("No materials yet\n")
		return nil
	}
	for _, m := range all {
		a.printf("%s\n", m)
	}
	a.printf("(* = already analyzed by the tutor)\n")
	return nil
}

func (a *App) upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: upload <file>")
	}

	u, err := ReadUpload(args[0])
	if err != nil {
		return err
	}
	if common.AssessSize(int64(len(u.Data))) == common.SizeDanger {
		a.printf("Warning: %s is large (%s)\n", u.Name, common.FormatSize(int64(len(u.Data))))
	}

	m, err := a.materials.Upload(ctx, u)
	if err != nil {
		return err
	}
	a.printf("Uploaded %s as %s\n", m.Name, m.ID)
	return nil
}

func (a *App) deleteMaterial(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <material-id>")
	}

	m, ok := a.cache.Get(args[0])
	if !ok {
		return fmt.Errorf("material %s: %w", args[0], common.ErrNotFound)
	}

	res := a.materials.Delete(ctx, m)
	if res.Err != nil {
		return res.Err
	}
	if res.BlobDeleteErr != nil {
		a.printf("Deleted %s; its stored file could not be removed and was left behind\n", m.Name)
		return nil
	}
	a.printf("Deleted %s\n", m.Name)
	return nil
}

func (a *App) chat(ctx context.Context, args []string) error {
	if len(args) == 0 {
		msgs, err := a.state.Messages(ctx)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			a.printf("No messages yet. Ask with: chat <question>\n")
		}
		for _, m := range msgs {
			who := "you"
			if m.Role == models.ChatModel {
				who = "tutor"
			}
			a.printf("[%s] %s: %s\n", m.Time.Format("15:04"), who, m.Text)
		}
		return nil
	}

	if len(args) == 1 && args[0] == "clear" {
		if err := a.state.ClearMessages(ctx); err != nil {
			return err
		}
		a.printf("Chat cleared\n")
		return nil
	}

	answer, err := a.tutor.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.printf("tutor: %s\n", answer)
	return nil
}

func (a *App) critique(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: critique <photo>")
	}

	u, err := ReadUpload(args[0])
	if err != nil {
		return err
	}

	out, err := a.tutor.Critique(ctx, u)
	if err != nil {
		return err
	}
	a.printf("%s\n", out)
	return nil
}

// quiz asks the generated questions one by one. Answering at least half
// correctly marks the topic completed.
func (a *App) quiz(ctx context.Context, args []string) error {
	topic := strings.Join(args, " ")
	if topic == "" {
		return errors.New("usage: quiz <topic>")
	}

	questions, err := a.tutor.Quiz(ctx, topic, quizLength)
	if err != nil {
		return err
	}

	score := 0
	for i, q := range questions {
		a.printf("\n%d. %s\n", i+1, q.Question)
		for j, o := range q.Options {
			a.printf("   %d) %s\n", j+1, o)
		}

		answer, err := GetSimpleText(a.in, "Your answer", a.out)
		if err != nil {
			return err
		}
		if n, err := strconv.Atoi(answer); err == nil && n-1 == q.CorrectIndex {
			score++
			a.printf("Correct!\n")
		} else {
			a.printf("The answer is %d) %s\n", q.CorrectIndex+1, q.Options[q.CorrectIndex])
		}
		if q.Explanation != "" {
			a.printf("%s\n", q.Explanation)
		}
	}

	a.printf("\nScore: %d/%d\n", score, len(questions))
	if score*2 >= len(questions) {
		if _, err := a.state.CompleteTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}
