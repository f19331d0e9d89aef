package conversation

const (
	msgNeedProfile = "Сначала настройте профиль /set_profile"
	msgDialogReset = "Диалог сброшен. Попробуй ещё раз."

	msgAskSex      = "Введите ваш пол (муж/жен):"
	msgBadSex      = "Введите корректно: муж или жен"
	msgAskWeight   = "Введите ваш вес (кг):"
	msgBadWeight   = "Введите корректный вес в кг (число > 0)."
	msgAskHeight   = "Введите ваш рост (см):"
	msgBadHeight   = "Введите корректный рост в см (число > 0)."
	msgAskAge      = "Введите ваш возраст:"
	msgBadAge      = "Введите корректный возраст (целое число > 0)."
	msgAskActivity = "Сколько минут активности у вас в день?"
	msgBadActivity = "Введите корректное количество минут активности (целое число >= 0)."
	msgAskCity     = "В каком городе вы находитесь?"
	msgBadCity     = "Введите название города."
	msgProfileDone = "✅ Профиль установлен!\n💧 Вода: %.0f мл/день\n🍽 Калории: %.0f ккал/день"

	msgAskWater  = "💧 Сколько воды вы выпили? (в мл)"
	msgBadWater  = "Введите корректное количество воды в мл (число > 0)."
	msgWaterDone = "💧 Записано: %.0f мл\nВсего сегодня: %.0f мл\nОсталось: %.0f мл"

	msgAskFood          = "🍽 Введите название продукта:"
	msgFoodNotFound     = "❌ Продукт не найден."
	msgFoodLookupFailed = "⚠️ Не удалось выполнить поиск продукта, попробуйте позже."
	msgChooseFood       = "Выберите продукт:"
	msgBadChoice        = "Ошибка выбора."
	msgAskGrams         = "%s — %s ккал/100г\nСколько грамм?"
	msgBadGrams         = "Введите число в граммах (число > 0)."
	msgFoodDone         = "✅ Записано: %.1f ккал"

	msgAskWorkoutType = "🏋️‍♂️ Введите тип тренировки (например, бег, йога, плавание):"
	msgAskDuration    = "Введите длительность тренировки в минутах:"
	msgBadDuration    = "Введите корректное время тренировки (число > 0)."
	msgWorkoutDone    = "🏃‍♂️ %s %.0f мин — %.0f ккал сожжено.\n💧 Цель по воде увеличена на %.0f мл."
)
