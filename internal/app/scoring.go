package app

import (
	"math"

	"knowme-quiz-service/internal/domain"
)

// ScoreAttempt grades one selection per question against the quiz. It is a
// pure function; the same selections always produce the same records no
// matter which UI path collected them. selections[i] is an option index for
// question i, or domain.CorrectAnswerNone when nothing was picked before the
// question ended.
func ScoreAttempt(quiz domain.Quiz, selections []int) (score int, percentage int, answers []domain.AnswerRecord) {
	total := len(quiz.Questions)
	answers = make([]domain.AnswerRecord, 0, total)
	for i, q := range quiz.Questions {
		selected := domain.CorrectAnswerNone
		if i < len(selections) {
			selected = selections[i]
		}
		correct := q.HasValidCorrect() && selected == q.CorrectAnswer
		if correct {
			score++
		}
		answers = append(answers, domain.AnswerRecord{
			QuestionIndex:  i,
			SelectedAnswer: selected,
			CorrectAnswer:  q.CorrectAnswer,
			IsCorrect:      correct,
		})
	}
	percentage = Percentage(score, total)
	return score, percentage, answers
}

// Percentage is round(100*score/total); 0 when the quiz has no questions.
func Percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}

// ResultTier is the qualitative label shown on the results screen.
type ResultTier struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Emoji   string `json:"emoji"`
}

// TierFor maps a percentage to its results-screen tier. Boundaries are
// inclusive; 0% gets distinct copy from the rest of the bottom band.
func TierFor(percentage int) ResultTier {
	switch {
	case percentage == 100:
		return ResultTier{
			Title:   "Are You a Stalker?",
			Message: "Okay, this is scary. You're either my soulmate or you've been reading my diary. I'm both flattered and terrified.",
			Emoji:   "😱",
		}
	case percentage >= 75:
		return ResultTier{
			Title:   "Impressive!",
			Message: "You actually listen to me ramble. You're a keeper. Or maybe you just have a freakishly good memory for useless trivia.",
			Emoji:   "😎",
		}
	case percentage >= 50:
		return ResultTier{
			Title:   "Not Bad...",
			Message: "You know enough to be dangerous. You're officially a 'good friend,' which is code for 'I tolerate your presence.'",
			Emoji:   "😐",
		}
	case percentage >= 25:
		return ResultTier{
			Title:   "Well, This is Awkward.",
			Message: "Do we even know each other? I've had deeper conversations with my houseplants. Seriously.",
			Emoji:   "😬",
		}
	case percentage > 0:
		return ResultTier{
			Title:   "A Stranger in My Life",
			Message: "Are you sure you have the right person? I think my barista knows more about me. This is just sad.",
			Emoji:   "🤦",
		}
	default:
		return ResultTier{
			Title:   "A Perfect Failure",
			Message: "Wow. A perfect score... in failure. It's almost impressive how little you know. Are we living in the same reality? I'm genuinely concerned.",
			Emoji:   "😂",
		}
	}
}
