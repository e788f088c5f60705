package config

// PaymentConfig tunes the simulated payment gateway.
type PaymentConfig struct {
    CardFailureRate  float64 // probability that a card charge is declined
    OtherFailureRate float64 // probability for UPI, NETBANKING and CASH
    RPS              int     // gateway calls per second before callers wait
}

func LoadPaymentConfig() PaymentConfig {
    return PaymentConfig{
        CardFailureRate:  envFloat("PAYMENT_CARD_FAILURE_RATE", 0.05),
        OtherFailureRate: envFloat("PAYMENT_OTHER_FAILURE_RATE", 0.02),
        RPS:              envInt("PAYMENT_RPS", 20),
    }
}
