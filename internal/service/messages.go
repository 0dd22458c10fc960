package service

import "fmt"

// Localized user-facing texts for the two supported languages. Unknown
// languages fall back to English.
var messages = map[string]map[string]string{
	"en": {
		"registered":          "Thanks, %s! Your application is registered. We will contact you after review.",
		"choose_position":     "Candidate approved. Which position?",
		"choose_date":         "Pick a course date:",
		"custom_date":         "Another date…",
		"ask_custom_date":     "Send the course date as YYYY-MM-DD (must be in the future).",
		"bad_date":            "That does not look like a valid future date. Please send it as YYYY-MM-DD.",
		"approved":            "Good news! You are approved for the %s position. Your course is on %s.",
		"rejected":            "Thank you for your interest. Unfortunately we cannot offer you a position at this time.",
		"eval_done":           "Decision recorded.",
		"ask_resched_date":    "Send the new course date as YYYY-MM-DD (must be in the future).",
		"resched_date_set":    "New course date %s recorded; the candidate has been informed.",
		"precourse_prompt":    "Reminder: your course is tomorrow, %s. Will you attend?",
		"yes":                 "Yes",
		"no":                  "No",
		"precourse_confirmed": "Great, see you at the course! ✔",
		"secondary_choice":    "Would you like to reschedule, or decline the offer?",
		"opt_reschedule":      "Reschedule",
		"opt_decline":         "Decline",
		"declined":            "Understood. We have recorded your decision. All the best!",
		"ask_resched_reason":  "Please tell us briefly why you need a new date.",
		"resched_ack":         "Thank you. We will contact you with a new date shortly.",
		"courseday_prompt":    "Your course is today! Share your location to check in when you arrive.",
		"share_location":      "Share location",
		"checked_in":          "Checked in at %s.",
		"checked_out":         "Checked out. Today: %s.",
		"already_checked_in":  "You already checked in today at %s.",
		"out_of_range":        "You appear to be %.0f m from the venue, outside the %.0f m check-in area. Nothing was recorded.",
		"alt_offer":           "We cannot offer the position you applied for, but we can offer you the %s position instead. Interested?",
		"alt_accepted":        "Great! We have recorded that you accept the %s position. We will be in touch.",
		"alt_declined":        "Understood, thank you for your time.",
		"try_again":           "Something went wrong on our side. Please try again in a moment.",
		"review_header":       "Please check your answers:",
		"confirm_btn":         "✅ Confirm",
		"edit_btn":            "✏ %s",
	},
	"ru": {
		"registered":          "Спасибо, %s! Ваша анкета зарегистрирована. Мы свяжемся с вами после рассмотрения.",
		"choose_position":     "Кандидат одобрен. Какая позиция?",
		"choose_date":         "Выберите дату курса:",
		"custom_date":         "Другая дата…",
		"ask_custom_date":     "Отправьте дату курса в формате ГГГГ-ММ-ДД (дата должна быть в будущем).",
		"bad_date":            "Это не похоже на корректную будущую дату. Отправьте ее в формате ГГГГ-ММ-ДД.",
		"approved":            "Хорошие новости! Вы приняты на позицию «%s». Ваш курс состоится %s.",
		"rejected":            "Спасибо за интерес. К сожалению, сейчас мы не можем предложить вам позицию.",
		"eval_done":           "Решение записано.",
		"ask_resched_date":    "Отправьте новую дату курса в формате ГГГГ-ММ-ДД (дата должна быть в будущем).",
		"resched_date_set":    "Новая дата курса %s записана; кандидат проинформирован.",
		"precourse_prompt":    "Напоминание: ваш курс завтра, %s. Вы придете?",
		"yes":                 "Да",
		"no":                  "Нет",
		"precourse_confirmed": "Отлично, ждем вас на курсе! ✔",
		"secondary_choice":    "Хотите перенести курс или отказаться от предложения?",
		"opt_reschedule":      "Перенести",
		"opt_decline":         "Отказаться",
		"declined":            "Понятно. Мы записали ваше решение. Всего доброго!",
		"ask_resched_reason":  "Коротко напишите, почему вам нужна другая дата.",
		"resched_ack":         "Спасибо. Мы свяжемся с вами с новой датой.",
		"courseday_prompt":    "Ваш курс сегодня! Поделитесь локацией, чтобы отметиться по прибытии.",
		"share_location":      "Отправить локацию",
		"checked_in":          "Отметка о приходе: %s.",
		"checked_out":         "Отметка об уходе записана. Сегодня: %s.",
		"already_checked_in":  "Вы уже отметились сегодня в %s.",
		"out_of_range":        "Вы находитесь в %.0f м от площадки, вне зоны отметки %.0f м. Ничего не записано.",
		"alt_offer":           "Мы не можем предложить выбранную позицию, но готовы предложить позицию «%s». Интересно?",
		"alt_accepted":        "Отлично! Мы записали ваше согласие на позицию «%s». Мы свяжемся с вами.",
		"alt_declined":        "Понятно, спасибо за уделенное время.",
		"try_again":           "Что-то пошло не так на нашей стороне. Пожалуйста, попробуйте еще раз чуть позже.",
		"review_header":       "Проверьте ваши ответы:",
		"confirm_btn":         "✅ Подтвердить",
		"edit_btn":            "✏ %s",
	},
}

// Msg renders a localized message, falling back to English.
func Msg(lang, key string, args ...any) string {
	table, ok := messages[lang]
	if !ok {
		table = messages["en"]
	}
	tmpl, ok := table[key]
	if !ok {
		tmpl = messages["en"][key]
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
